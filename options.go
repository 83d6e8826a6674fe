package raseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/tfkr-ae/raseed/domain"
	"github.com/tfkr-ae/raseed/ledger"
	"github.com/tfkr-ae/raseed/storage"
)

// WithConfigDir loads config.yaml from appConfigDir, creating the directory and a
// default file when they do not exist. RASEED_* environment variables override file values.
func WithConfigDir(appConfigDir string) func(*App) error {
	return func(app *App) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
			app.Logger.Info("creating config dir", "path", appConfigDir)
			if err := os.MkdirAll(appConfigDir, 0700); err != nil {
				return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
			}
		}
		app.ConfigDir = appConfigDir

		v := newViper()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(appConfigDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config file : %w", err)
			}
			if err := v.SafeWriteConfig(); err != nil {
				return fmt.Errorf("writing config file : %w", err)
			}
			// Bind the file just written so later Set calls persist to it.
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file : %w", err)
			}
		}

		cfg, err := loadConfig(v)
		if err != nil {
			return err
		}
		cfg.ConfigDir = appConfigDir
		app.Config = cfg
		return nil
	}
}

// WithLogger sets the logger. A nil logger is replaced with one that discards output.
func WithLogger(logger *slog.Logger) func(*App) error {
	return func(app *App) error {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		app.Logger = logger
		return nil
	}
}

// WithRepo sets the receipt repository directly.
func WithRepo(repo domain.ReceiptRepository) func(*App) error {
	return func(app *App) error {
		if repo == nil {
			return errors.New("nil receipt repository")
		}
		app.Repo = repo
		return nil
	}
}

// WithStore keeps the receipt collection in store under the configured storage key.
func WithStore(store storage.Store) func(*App) error {
	return func(app *App) error {
		if store == nil {
			return errors.New("nil store")
		}
		app.Store = store
		app.Repo = ledger.New(store, app.Config.Storage.Key)
		return nil
	}
}

// WithConfiguredStore opens the store selected by the storage section of the
// configuration. Apply it after WithConfigDir.
func WithConfiguredStore(ctx context.Context) func(*App) error {
	return func(app *App) error {
		store, err := OpenStore(ctx, app.Config)
		if err != nil {
			return err
		}
		app.Logger.Debug("opened store", "driver", store.Driver(), "key", app.Config.Storage.Key)
		return WithStore(store)(app)
	}
}

// WithClock replaces the time source.
func WithClock(clock func() time.Time) func(*App) error {
	return func(app *App) error {
		if clock == nil {
			return errors.New("nil clock")
		}
		app.Clock = clock
		return nil
	}
}

// WithIDGenerator replaces the receipt identifier source.
func WithIDGenerator(newID func() (uuid.UUID, error)) func(*App) error {
	return func(app *App) error {
		if newID == nil {
			return errors.New("nil id generator")
		}
		app.NewID = newID
		return nil
	}
}

// WithMetrics replaces the default collectors, e.g. to share a registry between apps.
func WithMetrics(metrics *Metrics) func(*App) error {
	return func(app *App) error {
		if metrics == nil {
			return errors.New("nil metrics")
		}
		app.Metrics = metrics
		return nil
	}
}
