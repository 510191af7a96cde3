package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/quocanhngo/stillalive/internal/config"
	"github.com/quocanhngo/stillalive/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	Format   string // text or json
	LogLevel string
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "stillctl",
		Short:         "Operate the Still Alive? service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSweepCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	zl, err := logger.New(logger.Config{Level: o.LogLevel, Format: "console", Service: "stillctl"})
	if err != nil {
		return nil, nil, err
	}
	return cfg, zl, nil
}

// print writes v as indented JSON, or calls text for the text format
func (o *rootOptions) print(w io.Writer, v any, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
