package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/raseed/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr, port string

	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the receipt form and receipt pages over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := openApp(ctx, cmd, rootOpts, slog.LevelInfo)
			if err != nil {
				return err
			}
			defer app.Close()

			if addr != "" {
				app.Config.ListenAddress = addr
			}
			if port != "" {
				app.Config.Port = port
			}

			srv, err := web.NewServer(app)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "building server", Err: err}
			}
			if err := srv.ListenAndServe(ctx); err != nil {
				return &ExitError{Code: ExitCommandError, Message: "serving", Err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides listen_address)")
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides port)")

	return cmd
}
