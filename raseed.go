// Package raseed generates printable receipts for domain-name registrations.
//
// An App ties the pieces together: validated form data becomes a Receipt with a fresh
// identifier and receipt number, receipts are appended to the configured ledger, and
// stored receipts can be looked up and exported as PNG or SVG images.
package raseed

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/raseed/domain"
	"github.com/tfkr-ae/raseed/storage"
)

// App is a configured receipt generator.
type App struct {
	ConfigDir string                    // The configuration directory, empty when running on defaults
	Config    *Config                   // Loaded configuration
	Repo      domain.ReceiptRepository  // Receipt collection
	Store     storage.Store             // Backing store of Repo, nil when Repo was supplied directly
	Logger    *slog.Logger              // Structured logger, never nil after New
	Metrics   *Metrics                  // Prometheus collectors, never nil after New
	Clock     func() time.Time          // Source of creation and render times
	NewID     func() (uuid.UUID, error) // Source of receipt identifiers
}

// New creates an App with default configuration and applies options in order.
func New(options ...func(*App) error) (*App, error) {
	app := &App{
		Config:  defaultConfig(),
		Logger:  slog.Default(),
		Metrics: NewMetrics(),
		Clock:   time.Now,
		NewID:   uuid.NewRandom,
	}
	if err := app.WithOptions(options...); err != nil {
		return nil, err
	}
	return app, nil
}

// WithOptions applies a series of configuration functions to the app.
func (app *App) WithOptions(options ...func(*App) error) error {
	for _, option := range options {
		if err := option(app); err != nil {
			return fmt.Errorf("applying option on raseed : %w", err)
		}
	}
	return nil
}

// Close releases the backing store when it holds resources.
func (app *App) Close() error {
	if closer, ok := app.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (app *App) repo() (domain.ReceiptRepository, error) {
	if app.Repo == nil {
		return nil, errors.New("no receipt repository configured")
	}
	return app.Repo, nil
}
