package mq

import (
	"encoding/json"

	"github.com/Leganyst/table-reservations/internal/transport/command"
)

// CommandEnvelope is the body of every message on the command queue.
type CommandEnvelope struct {
	Type    command.Type    `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Response is published to the reply_to queue of a command, if it has one.
type Response struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error,omitempty"`
	Code    command.ErrorCode `json:"code,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
	Type    string            `json:"type"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// ResponseType names the reply to a command type, e.g. CreateReservationResponse.
func ResponseType(t command.Type) string {
	return string(t) + "Response"
}
