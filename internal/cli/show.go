package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/raseed/render"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:           "show <id>",
		Short:         "Print a stored receipt",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), cmd, rootOpts, slog.LevelWarn)
			if err != nil {
				return err
			}
			defer app.Close()

			receipt, found, err := app.Lookup(cmd.Context(), args[0])
			if err != nil {
				return commandError("looking up receipt", err)
			}
			if !found {
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("receipt %s not found", args[0])}
			}

			if rootOpts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), receipt)
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Terminal(receipt, app.Clock(), width))
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", render.DefaultTerminalWidth, "receipt width in columns")

	return cmd
}
