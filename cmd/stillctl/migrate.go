package main

import (
	"fmt"

	"github.com/quocanhngo/stillalive/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zl, err := opts.load()
			if err != nil {
				return err
			}
			if err := migrations.Run(cfg.DB.URL(), zl); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zl, err := opts.load()
			if err != nil {
				return err
			}
			if err := migrations.Rollback(cfg.DB.URL(), zl); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "last migration rolled back")
			return nil
		},
	})

	return cmd
}
