package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/raseed"
)

// NewConfigCommand creates the config command and its get and set subcommands.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change settings in config.yaml",
		Long: `Read and change settings stored in config.yaml under the config dir.

RASEED_* environment variables still override file values at run time.`,
	}

	cmd.AddCommand(newConfigGetCommand(rootOpts))
	cmd.AddCommand(newConfigSetCommand(rootOpts))

	return cmd
}

func newConfigGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get [key]",
		Short:         "Print one setting, or every setting without a key",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openConfig(cmd, rootOpts)
			if err != nil {
				return err
			}

			keys := app.Config.Keys()
			if len(args) == 1 {
				keys = args
			}

			values := make(map[string]any, len(keys))
			for _, key := range keys {
				value, err := app.Config.Get(key)
				if err != nil {
					return &ExitError{Code: ExitFailure, Message: "reading setting", Err: err}
				}
				values[key] = value
			}

			if rootOpts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), values)
			}
			for _, key := range keys {
				if len(args) == 1 {
					fmt.Fprintln(cmd.OutOrStdout(), values[key])
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, values[key])
			}
			return nil
		},
	}
}

func newConfigSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting and save it to config.yaml",
		Example: `  raseed config set port 9090
  raseed config set storage.driver fs`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openConfig(cmd, rootOpts)
			if err != nil {
				return err
			}

			if err := app.Config.Set(args[0], args[1]); err != nil {
				return &ExitError{Code: ExitFailure, Message: "changing setting", Err: err}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

// openConfig loads the configuration without opening the store.
func openConfig(cmd *cobra.Command, opts *RootOptions) (*raseed.App, error) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	app, err := raseed.New(raseed.WithLogger(logger), raseed.WithConfigDir(opts.ConfigDir))
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "loading raseed", Err: err}
	}
	return app, nil
}
