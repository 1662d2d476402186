package main

import "github.com/Leganyst/table-reservations/internal/cli"

func main() {
	cli.Execute()
}
