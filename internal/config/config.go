// Package config loads todokit configuration.
//
// Configuration comes from a single optional file named by the --config
// flag or the TODOKIT_CONFIG environment variable. YAML files are read
// as-is; files ending in .json or .jsonc may carry comments and trailing
// commas. Values missing from the file keep their defaults, and a small
// set of environment variables override the result:
//
//	TODOKIT_BASE_URL      base_url
//	TODOKIT_STORE_DRIVER  store.driver
//	TODOKIT_STORE_PATH    store.path
//	TODOKIT_LOG_LEVEL     log.level
//
// ${HOME} and ${VAR:-default} are expanded in store.path.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig      = "TODOKIT_CONFIG"
	EnvBaseURL     = "TODOKIT_BASE_URL"
	EnvStoreDriver = "TODOKIT_STORE_DRIVER"
	EnvStorePath   = "TODOKIT_STORE_PATH"
	EnvLogLevel    = "TODOKIT_LOG_LEVEL"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config is the full client configuration.
type Config struct {
	// BaseURL is the origin of the remote resource store.
	BaseURL string `yaml:"base_url"`

	// HTTPTimeout bounds every call to the resource store.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Store selects where session and notification state is kept.
	Store StoreConfig `yaml:"store"`

	Log LogConfig `yaml:"log"`
}

// StoreConfig configures the persistent key-value store.
type StoreConfig struct {
	// Driver is one of memory, file or sqlite.
	Driver string `yaml:"driver"`

	// Path is the JSON file (file) or database (sqlite). Unused by memory.
	Path string `yaml:"path"`

	// PoolSize is the sqlite connection pool size. Zero picks a default.
	PoolSize int `yaml:"pool_size"`
}

// LogConfig configures the slog logger built by NewLogger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		BaseURL:     "http://localhost:8000",
		HTTPTimeout: 5 * time.Second,
		Store: StoreConfig{
			Driver: DriverFile,
			Path:   filepath.Join(home, ".todokit", "state.json"),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load builds the configuration from path, or from $TODOKIT_CONFIG when
// path is empty, then applies environment overrides and validates the
// result. With neither set, defaults plus environment overrides are used.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.Store.Path = expandVars(cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges the file at path into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	// JSON is a subset of YAML, so stripped JSONC goes through the same
	// decoder and tags.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BaseURL = getenv(EnvBaseURL, c.BaseURL)
	c.Store.Driver = getenv(EnvStoreDriver, c.Store.Driver)
	c.Store.Path = getenv(EnvStorePath, c.Store.Path)
	c.Log.Level = getenv(EnvLogLevel, c.Log.Level)
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("base_url: scheme must be http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("base_url: missing host"))
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout))
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile, DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for driver %s", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// getenv returns the environment variable k, or def when it is unset or
// empty.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})
}
