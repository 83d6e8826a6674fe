package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/raseed"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var imageType, output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a stored receipt as an image",
		Long: `Export a stored receipt as a PNG or SVG image.

The file is named receipt-<number>.<type> in the current directory unless
--output is given. Use --output - to write the image to stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := raseed.ParseFormat(imageType)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "parsing --type", Err: err}
			}

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

			artifact, err := app.Export(cmd.Context(), receipt, format)
			if err != nil {
				return commandError("exporting receipt", err)
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(artifact.Data)
				return err
			}
			if output == "" {
				output = artifact.Filename
			}
			if err := os.WriteFile(output, artifact.Data, 0644); err != nil {
				return commandError("writing "+output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s, %d bytes)\n", output, artifact.ContentType, len(artifact.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&imageType, "type", "t", "png", "image type (png|svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")

	return cmd
}
