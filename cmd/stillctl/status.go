package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/app"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/spf13/cobra"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <user-id>",
		Short: "Show a user's MIA phase without sending anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			cfg, zl, err := opts.load()
			if err != nil {
				return err
			}
			defer zl.Sync()

			a, err := app.New(cmd.Context(), cfg, zl, false)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.Engine.Status(cmd.Context(), userID)
			if err != nil {
				return err
			}
			resp := status.Response()
			return opts.print(cmd.OutOrStdout(), resp, func(w io.Writer) {
				writeStatus(w, resp)
			})
		},
	}
}

func writeStatus(w io.Writer, s model.MiaStatusResponse) {
	fmt.Fprintf(w, "phase:           %s\n", s.Phase)
	fmt.Fprintf(w, "threshold:       %dh\n", s.ThresholdHrs)
	fmt.Fprintf(w, "emergency mode:  %t\n", s.EmergencyModeActive)
	fmt.Fprintf(w, "last check-in:   %s\n", formatTime(s.LastCheckInAt))
	fmt.Fprintf(w, "pre-alert at:    %s (sent: %t)\n", formatTime(s.PreAlertAt), s.PreAlertSent)
	fmt.Fprintf(w, "alert at:        %s (sent: %t)\n", formatTime(s.AlertAt), s.EmergencySent)
	fmt.Fprintf(w, "last words sent: %t\n", s.LastWordsSent)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
