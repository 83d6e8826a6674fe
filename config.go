package raseed

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tfkr-ae/raseed/db"
	"github.com/tfkr-ae/raseed/ledger"
	"github.com/tfkr-ae/raseed/storage"
	"github.com/tfkr-ae/raseed/storage/fs"
	"github.com/tfkr-ae/raseed/storage/memory"
	"github.com/tfkr-ae/raseed/storage/s3"
)

// StorageConfig selects where the receipt collection lives.
type StorageConfig struct {
	Driver string    `mapstructure:"driver"` // memory, fs, sqlite, postgres or s3
	Key    string    `mapstructure:"key"`    // Key the whole collection is stored under
	Path   string    `mapstructure:"path"`   // sqlite file or fs directory, relative to the config dir
	DSN    string    `mapstructure:"dsn"`    // postgres connection string
	S3     s3.Config `mapstructure:"s3"`
}

// ExportConfig controls image exports.
type ExportConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // Upper bound on producing one image
	Scale   float64       `mapstructure:"scale"`   // Pixel density multiplier
}

type Config struct {
	viper         *viper.Viper
	ConfigDir     string        `mapstructure:"config_dir"`     // Current config dir
	ListenAddress string        `mapstructure:"listen_address"` // Address the web server binds to
	Port          string        `mapstructure:"port"`           // Port the web server binds to
	Storage       StorageConfig `mapstructure:"storage"`
	Export        ExportConfig  `mapstructure:"export"`
}

// Addr is the host:port the web server listens on.
func (cfg *Config) Addr() string {
	return net.JoinHostPort(cfg.ListenAddress, cfg.Port)
}

// Set validates value for a known key, stores it and rewrites the configuration file
// when one is loaded. An invalid value leaves the configuration unchanged.
func (cfg *Config) Set(key string, value any) error {
	key = strings.ToLower(key)
	if !slices.Contains(cfg.viper.AllKeys(), key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	previous := cfg.viper.Get(key)
	cfg.viper.Set(key, value)
	next := &Config{viper: cfg.viper}
	if err := cfg.viper.Unmarshal(next); err != nil {
		cfg.viper.Set(key, previous)
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	if err := next.validate(); err != nil {
		cfg.viper.Set(key, previous)
		return err
	}

	if cfg.viper.ConfigFileUsed() != "" {
		if err := cfg.viper.WriteConfig(); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
	}
	next.ConfigDir = cfg.ConfigDir
	*cfg = *next
	return nil
}

// Get returns the effective value of key.
func (cfg *Config) Get(key string) (any, error) {
	key = strings.ToLower(key)
	if !slices.Contains(cfg.viper.AllKeys(), key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	return cfg.viper.Get(key), nil
}

// Keys lists every configuration key in sorted order.
func (cfg *Config) Keys() []string {
	keys := cfg.viper.AllKeys()
	slices.Sort(keys)
	return keys
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("listen_address", "127.0.0.1")
	v.SetDefault("port", "8080")
	v.SetDefault("storage.driver", string(storage.DriverSQLite))
	v.SetDefault("storage.key", ledger.DefaultKey)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.prefix", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.path_style", false)
	v.SetDefault("export.timeout", "10s")
	v.SetDefault("export.scale", 2.0)

	v.SetEnvPrefix("RASEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func loadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{viper: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Export.Timeout <= 0 {
		return fmt.Errorf("export.timeout must be positive, got %v", cfg.Export.Timeout)
	}
	if cfg.Export.Scale <= 0 {
		return fmt.Errorf("export.scale must be positive, got %v", cfg.Export.Scale)
	}
	return nil
}

// defaultConfig is the configuration used when no config dir is given.
func defaultConfig() *Config {
	cfg, err := loadConfig(newViper())
	if err != nil {
		// Environment overrides are invalid; fall back to the built-in defaults.
		cfg = &Config{
			viper:         viper.New(),
			ListenAddress: "127.0.0.1",
			Port:          "8080",
			Storage:       StorageConfig{Driver: string(storage.DriverSQLite), Key: ledger.DefaultKey},
			Export:        ExportConfig{Timeout: 10 * time.Second, Scale: 2},
		}
	}
	return cfg
}

// storagePath resolves the configured path against the config dir, using fallback
// when no path is configured.
func (cfg *Config) storagePath(fallback string) string {
	p := cfg.Storage.Path
	if p == "" {
		p = fallback
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.ConfigDir, p)
}

// OpenStore builds the store selected by cfg.Storage.Driver.
func OpenStore(ctx context.Context, cfg *Config) (storage.Store, error) {
	switch storage.Driver(cfg.Storage.Driver) {
	case storage.DriverMemory:
		return memory.New(), nil
	case storage.DriverFS:
		store, err := fs.New(cfg.storagePath("receipts"))
		if err != nil {
			return nil, fmt.Errorf("opening fs store: %w", err)
		}
		return store, nil
	case storage.DriverSQLite, "":
		conn, err := db.New(cfg.storagePath("raseed.db"))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db.NewStoreRepo(conn), nil
	case storage.DriverPostgres:
		conn, err := db.NewPostgres(cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return db.NewStoreRepo(conn), nil
	case storage.DriverS3:
		store, err := s3.New(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, fmt.Errorf("opening s3 store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
