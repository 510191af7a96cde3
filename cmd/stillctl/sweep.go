package main

import (
	"fmt"
	"io"

	"github.com/quocanhngo/stillalive/internal/app"
	"github.com/quocanhngo/stillalive/internal/mia"
	"github.com/spf13/cobra"
)

type sweepResult struct {
	Ran    bool       `json:"ran"`
	Report mia.Report `json:"report"`
}

func newSweepCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one MIA sweep now",
		Long:  "Runs a single sweep over all users. With MIA_LOCK_ENABLED the Redis lock is honoured, so this never overlaps a server's scheduled run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zl, err := opts.load()
			if err != nil {
				return err
			}
			defer zl.Sync()

			a, err := app.New(cmd.Context(), cfg, zl, cfg.MIA.LockEnabled)
			if err != nil {
				return err
			}
			defer a.Close()

			report, ran, err := a.Scheduler().RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), sweepResult{Ran: ran, Report: report}, func(w io.Writer) {
				writeReport(w, ran, report)
			})
		},
	}
}

func writeReport(w io.Writer, ran bool, r mia.Report) {
	if !ran {
		fmt.Fprintln(w, "sweep skipped: another sweep holds the lock")
		return
	}
	fmt.Fprintf(w, "users:                  %d\n", r.Users)
	fmt.Fprintf(w, "failed:                 %d\n", r.Failed)
	fmt.Fprintf(w, "suspended:              %d\n", r.Suspended)
	fmt.Fprintf(w, "emergency mode expired: %d\n", r.EmergencyModeExpired)
	fmt.Fprintf(w, "pre-alerts sent:        %d\n", r.PreAlertsSent)
	fmt.Fprintf(w, "emergency sends:        %d\n", r.EmergencySends)
	fmt.Fprintf(w, "emergencies completed:  %d\n", r.EmergenciesCompleted)
	fmt.Fprintf(w, "last words sent:        %d\n", r.LastWordsSent)
	fmt.Fprintf(w, "send failures:          %d\n", r.SendFailures)
	fmt.Fprintf(w, "duration:               %s\n", r.Duration)
}
