// Package config loads sitegrid settings from a YAML file, a .env file and
// SITEGRID_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ukaji3/sitegrid-go/internal/keyring"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/parser"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/store"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/timeline"
)

// DefaultPath is the config file read when no path is given and it exists.
const DefaultPath = "sitegrid.yaml"

// Environment variable names.
const (
	EnvDatabaseURL    = "SITEGRID_DATABASE_URL"
	EnvDatabaseDriver = "SITEGRID_DATABASE_DRIVER"
	EnvAddr           = "SITEGRID_ADDR"
	EnvLogDir         = "SITEGRID_LOG_DIR"
	EnvAnchorToken    = "SITEGRID_ANCHOR_TOKEN"
	EnvPageSize       = "SITEGRID_PAGE_SIZE"
	EnvDebug          = "SITEGRID_DEBUG"
)

// Config holds all sitegrid settings.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Import   ImportConfig   `yaml:"import"`
	Timeline TimelineConfig `yaml:"timeline"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects the document store.
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite" (default "sqlite").
	Driver string `yaml:"driver"`
	// URL is a Postgres connection string or a SQLite file path
	// (default "sitegrid.db"). For Postgres an empty URL is looked up in
	// the OS keyring when the store is opened.
	URL string `yaml:"url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `yaml:"addr"`
	// MaxUploadMB caps multipart upload size (default 32).
	MaxUploadMB int64 `yaml:"max_upload_mb"`
	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ImportConfig configures spreadsheet normalization.
type ImportConfig struct {
	// AnchorToken marks the budget header row (default "TRADER").
	AnchorToken string `yaml:"anchor_token"`
}

// TimelineConfig configures schedule pagination.
type TimelineConfig struct {
	// PageSize is the default tasks per page (default 10).
	PageSize int `yaml:"page_size"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Dir receives the rotating log file. Empty logs to stderr only.
	Dir   string `yaml:"dir"`
	Debug bool   `yaml:"debug"`
}

// lookupKeyring is replaced in tests.
var lookupKeyring = keyring.GetDatabaseURL

// Default returns a Config with every default applied.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if d, err := store.ParseDriver(c.Database.Driver); err == nil {
		c.Database.Driver = string(d)
	}
	if c.Database.URL == "" && c.Database.Driver == string(store.DriverSQLite) {
		c.Database.URL = "sitegrid.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 32
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if strings.TrimSpace(c.Import.AnchorToken) == "" {
		c.Import.AnchorToken = parser.DefaultAnchorToken
	}
	if c.Timeline.PageSize <= 0 {
		c.Timeline.PageSize = timeline.DefaultPageSize
	}
}

// Load reads configuration. The YAML file at path is required when path is
// non-empty; otherwise DefaultPath is read if present. A .env file in the
// working directory is loaded into the environment without overriding
// variables that are already set.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	file := path
	if file == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			file = DefaultPath
		}
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDatabaseDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		c.Log.Dir = v
	}
	if v := os.Getenv(EnvAnchorToken); v != "" {
		c.Import.AnchorToken = v
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPageSize, err)
		}
		c.Timeline.PageSize = n
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		c.Log.Debug = debug
	}
	return nil
}

// DatabaseURL returns the configured database URL, falling back to the OS
// keyring when none is set. The keyring is only consulted by commands that
// open the store.
func (c *Config) DatabaseURL() (string, error) {
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	url, err := lookupKeyring()
	if err != nil {
		return "", fmt.Errorf("database URL required (set %s, database.url or the OS keyring): %w", EnvDatabaseURL, err)
	}
	if url == "" {
		return "", errors.New("database URL is empty")
	}
	c.Database.URL = url
	return url, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	_, err := store.ParseDriver(c.Database.Driver)
	return err
}

// Driver returns the parsed database driver.
func (c Config) Driver() store.Driver {
	d, _ := store.ParseDriver(c.Database.Driver)
	return d
}
