package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored receipt",
		Long: `Delete the stored receipt collection, including one that can no longer be read.

This cannot be undone and requires --force.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return &ExitError{Code: ExitCommandError, Message: "refusing to delete receipts without --force"}
			}

			app, err := openApp(cmd.Context(), cmd, rootOpts, slog.LevelWarn)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Reset(cmd.Context()); err != nil {
				return commandError("resetting receipts", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Receipts deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm deleting every receipt")

	return cmd
}
