// Package config handles the XDG configuration directory, file paths and
// the optional config.toml, .env and environment settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"tasklist/internal/logging"
	"tasklist/internal/task"
)

const (
	// AppName is the application directory name.
	AppName = "tasklist"

	// ConfigFile is the optional settings file.
	ConfigFile = "config.toml"

	// EnvFile is the optional dotenv file.
	EnvFile = ".env"

	// StorageFile is the file backend's storage file.
	StorageFile = "storage.json"

	// DatabaseFile is the default sqlite database.
	DatabaseFile = "tasks.db"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"
)

// Storage backends.
const (
	BackendFile        = "file"
	BackendSQLite      = "sqlite"
	BackendMySQL       = "mysql"
	BackendGoogleTasks = "googletasks"
)

// Default Google Tasks list titles.
const (
	DefaultTasksList     = "tasks"
	DefaultCompletedList = "completedTasks"
)

// Environment variables, applied over config.toml and .env.
const (
	EnvVariant  = "TASKLIST_VARIANT"
	EnvBackend  = "TASKLIST_BACKEND"
	EnvDSN      = "TASKLIST_DSN"
	EnvLogLevel = "TASKLIST_LOG_LEVEL"
)

// ErrInvalid is wrapped by every settings validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Variant     task.Variant
	Backend     string
	DSN         string
	LogLevel    string
	LogFormat   string
	GoogleTasks GoogleTasks
}

// GoogleTasks holds the list titles used by the googletasks backend.
type GoogleTasks struct {
	TasksList     string
	CompletedList string
}

// fileSettings mirrors config.toml.
type fileSettings struct {
	Variant     string `toml:"variant"`
	Backend     string `toml:"backend"`
	DSN         string `toml:"dsn"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	GoogleTasks struct {
		TasksList     string `toml:"tasks_list"`
		CompletedList string `toml:"completed_list"`
	} `toml:"googletasks"`
}

// New creates a Config for the default or specified config directory and
// loads its settings. If configDir is empty, uses XDG_CONFIG_HOME/tasklist
// or $HOME/.config/tasklist. Missing settings files are not an error.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Dir:     dir,
		Variant: task.DefaultVariant,
		Backend: BackendFile,
		GoogleTasks: GoogleTasks{
			TasksList:     DefaultTasksList,
			CompletedList: DefaultCompletedList,
		},
	}

	raw := fileSettings{}
	if _, err := toml.DecodeFile(cfg.ConfigPath(), &raw); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, cfg.ConfigPath(), err)
	}

	env, err := godotenv.Read(cfg.EnvPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, cfg.EnvPath(), err)
	}
	overlay(&raw.Variant, env[EnvVariant], os.Getenv(EnvVariant))
	overlay(&raw.Backend, env[EnvBackend], os.Getenv(EnvBackend))
	overlay(&raw.DSN, env[EnvDSN], os.Getenv(EnvDSN))
	overlay(&raw.LogLevel, env[EnvLogLevel], os.Getenv(EnvLogLevel))

	if err := cfg.apply(raw); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay sets *dst to the last non-empty value.
func overlay(dst *string, values ...string) {
	for _, v := range values {
		if v != "" {
			*dst = v
		}
	}
}

func (c *Config) apply(raw fileSettings) error {
	if raw.Variant != "" {
		v, err := task.ParseVariant(raw.Variant)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		c.Variant = v
	}

	if raw.Backend != "" {
		switch b := strings.ToLower(strings.TrimSpace(raw.Backend)); b {
		case BackendFile, BackendSQLite, BackendMySQL, BackendGoogleTasks:
			c.Backend = b
		default:
			return fmt.Errorf("%w: unknown backend: %s", ErrInvalid, raw.Backend)
		}
	}

	c.DSN = raw.DSN
	if c.Backend == BackendMySQL && c.DSN == "" {
		return fmt.Errorf("%w: the mysql backend requires a dsn", ErrInvalid)
	}

	if raw.LogLevel != "" {
		if _, err := logging.ParseLevel(raw.LogLevel); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if raw.LogFormat != "" {
		if _, err := logging.ParseFormatter(raw.LogFormat); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	c.LogLevel = raw.LogLevel
	c.LogFormat = raw.LogFormat

	overlay(&c.GoogleTasks.TasksList, raw.GoogleTasks.TasksList)
	overlay(&c.GoogleTasks.CompletedList, raw.GoogleTasks.CompletedList)
	if c.GoogleTasks.TasksList == c.GoogleTasks.CompletedList {
		return fmt.Errorf("%w: googletasks lists must differ", ErrInvalid)
	}

	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.toml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnvPath returns the path to the dotenv file.
func (c *Config) EnvPath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// StoragePath returns the path to the file backend's storage file.
func (c *Config) StoragePath() string {
	return filepath.Join(c.Dir, StorageFile)
}

// SQLiteDSN returns the configured DSN, or the default database file in
// the config directory.
func (c *Config) SQLiteDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return filepath.Join(c.Dir, DatabaseFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
