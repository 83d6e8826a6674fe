package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/raseed"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input, e.g. a receipt that failed validation
	ExitCommandError = 2 // Command error (unreadable store, bad config, etc.)
)

// ExitError carries the exit code a failed command should end the process with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// commandError wraps err as an ExitCommandError, adding the reset hint for a
// corrupted store.
func commandError(message string, err error) error {
	if raseed.IsCorrupted(err) {
		message += " (run \"raseed reset --force\" to start a new collection)"
	}
	return &ExitError{Code: ExitCommandError, Message: message, Err: err}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openApp loads the configuration and store for a command. Logs go to stderr at
// level, or at debug with --verbose.
func openApp(ctx context.Context, cmd *cobra.Command, opts *RootOptions, level slog.Level) (*raseed.App, error) {
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	app, err := raseed.New(
		raseed.WithLogger(logger),
		raseed.WithConfigDir(opts.ConfigDir),
		raseed.WithConfiguredStore(ctx),
	)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "loading raseed", Err: err}
	}
	return app, nil
}
