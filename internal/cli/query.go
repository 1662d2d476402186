package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Leganyst/table-reservations/internal/transport/command"
)

func NewAvailabilityCmd() *cobra.Command {
	var (
		restaurant string
		date       string
		party      int
	)
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Print the bookable slots of a restaurant for one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurantID, err := uuid.Parse(restaurant)
			if err != nil {
				return fmt.Errorf("--restaurant: %w", err)
			}
			day, err := time.Parse(command.DateLayout, date)
			if err != nil {
				return fmt.Errorf("--date: expected %s: %w", command.DateLayout, err)
			}

			a, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer a.close()

			av, err := a.reservations().GetAvailability(cmd.Context(), restaurantID, day, party)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), command.NewAvailabilityView(av))
		},
	}
	cmd.Flags().StringVar(&restaurant, "restaurant", "", "restaurant id")
	cmd.Flags().StringVar(&date, "date", "", "local date, "+command.DateLayout)
	cmd.Flags().IntVar(&party, "party", 2, "party size")
	_ = cmd.MarkFlagRequired("restaurant")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

type eventView struct {
	Type      string         `json:"type"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt string         `json:"created_at"`
}

func NewHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <reservation-id>",
		Short: "Print a reservation and its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("reservation id: %w", err)
			}

			a, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer a.close()

			svc := a.reservations()
			ctx := cmd.Context()
			res, err := svc.GetReservation(ctx, id)
			if err != nil {
				return err
			}
			events, err := svc.Events(ctx, id)
			if err != nil {
				return err
			}

			out := struct {
				Reservation command.ReservationView `json:"reservation"`
				Events      []eventView             `json:"events"`
			}{Reservation: command.NewReservationView(res)}
			for _, e := range events {
				out.Events = append(out.Events, eventView{
					Type:      string(e.EventType),
					Details:   e.Details,
					CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
				})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
