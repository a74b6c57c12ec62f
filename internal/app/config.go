package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"autonym/internal/store"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Environment overrides.
const (
	EnvHome     = "AUTONYM_HOME"
	EnvStore    = "AUTONYM_STORE"
	EnvLogLevel = "AUTONYM_LOG_LEVEL"
)

const configFile = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home     string             `yaml:"home"`
	Store    StoreConfig        `yaml:"store"`
	Log      LogConfig          `yaml:"log"`
	Keystore store.ScryptParams `yaml:"keystore"`
}

// StoreConfig selects the key event log backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"` // sqlite database file; defaults to <home>/kel.db
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	home := ".autonym"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".autonym")
	}
	return Config{
		Home:     home,
		Store:    StoreConfig{Driver: DriverFile},
		Log:      LogConfig{Level: "warn"},
		Keystore: store.DefaultScryptParams(),
	}
}

// LoadConfig reads path, or <home>/config.yaml when path is empty, over the
// defaults and applies environment overrides. home, when set, wins over
// both the file and AUTONYM_HOME. A missing file is not an error.
func LoadConfig(path, home string) (Config, error) {
	cfg := DefaultConfig()
	if env := strings.TrimSpace(os.Getenv(EnvHome)); env != "" {
		cfg.Home = env
	}
	if home != "" {
		cfg.Home = home
	}

	if path == "" {
		path = filepath.Join(cfg.Home, configFile)
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		Merge(&cfg, parsed)
	}

	ApplyEnvOverrides(&cfg)
	if home != "" {
		cfg.Home = home
	}
	return cfg, cfg.Validate()
}

// Merge copies the set fields of src over dst.
func Merge(dst *Config, src Config) {
	if src.Home != "" {
		dst.Home = src.Home
	}
	if src.Store.Driver != "" {
		dst.Store.Driver = src.Store.Driver
	}
	if src.Store.Path != "" {
		dst.Store.Path = src.Store.Path
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Keystore.N != 0 {
		dst.Keystore.N = src.Keystore.N
	}
	if src.Keystore.R != 0 {
		dst.Keystore.R = src.Keystore.R
	}
	if src.Keystore.P != 0 {
		dst.Keystore.P = src.Keystore.P
	}
}

// ApplyEnvOverrides applies AUTONYM_* variables to cfg.
func ApplyEnvOverrides(cfg *Config) {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		cfg.Home = home
	}
	if driver := strings.TrimSpace(os.Getenv(EnvStore)); driver != "" {
		cfg.Store.Driver = driver
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.Log.Level = level
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("config: home is empty")
	}
	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Keystore.N <= 1 || c.Keystore.N&(c.Keystore.N-1) != 0 {
		return fmt.Errorf("config: keystore scrypt_n must be a power of two > 1, got %d", c.Keystore.N)
	}
	if c.Keystore.R <= 0 || c.Keystore.P <= 0 {
		return errors.New("config: keystore scrypt_r and scrypt_p must be positive")
	}
	return nil
}

// SQLitePath returns the database file for the sqlite driver.
func (c Config) SQLitePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.Home, "kel.db")
}
