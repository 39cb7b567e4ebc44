package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by DASHBOARD_STORAGE.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// EnvFileVariable names the variable that points at the optional dotenv file.
const EnvFileVariable = "DASHBOARD_ENV_FILE"

// Config captures environment driven configuration values for the dashboard service.
type Config struct {
	HTTPPort          int           `env:"DASHBOARD_HTTP_PORT" envDefault:"8080"`
	Storage           string        `env:"DASHBOARD_STORAGE" envDefault:"sqlite"`
	SQLiteDSN         string        `env:"DASHBOARD_SQLITE_DSN" envDefault:"dashboard.db"`
	Timezone          string        `env:"DASHBOARD_TIMEZONE" envDefault:"Local"`
	RefreshSpec       string        `env:"DASHBOARD_REFRESH_SPEC" envDefault:"@every 60s"`
	UpcomingPageSize  int           `env:"DASHBOARD_UPCOMING_PAGE_SIZE" envDefault:"6"`
	AdminUser         string        `env:"DASHBOARD_ADMIN_USER" envDefault:"admin"`
	AdminPasswordHash string        `env:"DASHBOARD_ADMIN_PASSWORD_HASH"`
	SeedFile          string        `env:"DASHBOARD_SEED_FILE"`
	LogLevel          string        `env:"DASHBOARD_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout   time.Duration `env:"DASHBOARD_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration values from the current process environment.
//
// The dotenv file named by DASHBOARD_ENV_FILE (default ".env") is read first when
// it exists; variables already present in the environment win. Every invalid
// value is reported in a single error.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment values: %w", err)
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)
	cfg.AdminPasswordHash = strings.TrimSpace(cfg.AdminPasswordHash)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFile() error {
	path := strings.TrimSpace(os.Getenv(EnvFileVariable))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// Validate reports every field holding an unusable value.
func (c Config) Validate() error {
	invalid := make([]string, 0, 4)

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, "DASHBOARD_HTTP_PORT")
	}
	switch c.Storage {
	case StorageSQLite:
		if c.SQLiteDSN == "" {
			invalid = append(invalid, "DASHBOARD_SQLITE_DSN")
		}
	case StorageMemory:
	default:
		invalid = append(invalid, "DASHBOARD_STORAGE")
	}
	if _, err := c.Location(); err != nil {
		invalid = append(invalid, "DASHBOARD_TIMEZONE")
	}
	if strings.TrimSpace(c.RefreshSpec) == "" {
		invalid = append(invalid, "DASHBOARD_REFRESH_SPEC")
	}
	if c.UpcomingPageSize <= 0 {
		invalid = append(invalid, "DASHBOARD_UPCOMING_PAGE_SIZE")
	}
	if _, err := c.Level(); err != nil {
		invalid = append(invalid, "DASHBOARD_LOG_LEVEL")
	}
	if c.ShutdownTimeout <= 0 {
		invalid = append(invalid, "DASHBOARD_SHUTDOWN_TIMEOUT")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// Location resolves the display time zone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Level resolves the slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// AdminEnabled reports whether admin credentials are configured.
func (c Config) AdminEnabled() bool {
	return c.AdminUser != "" && c.AdminPasswordHash != ""
}
