// Package config loads the daybook YAML config file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath     = "~/.daybook/config.yaml"
	DefaultDBPath   = "~/.daybook/daybook.db"
	DefaultSchedule = "5 0 * * *"
)

// Config holds process-level settings. The maintenance policy itself lives
// in the database settings table so it travels with the data.
type Config struct {
	// DBPath is the SQLite file. A leading ~ is expanded.
	DBPath string `yaml:"db_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// Timezone is the IANA zone that decides what "today" is. Empty means
	// the system zone.
	Timezone string `yaml:"timezone"`

	// Schedule is a five-field cron expression for daily maintenance in
	// serve mode.
	Schedule string `yaml:"schedule"`
}

func DefaultConfig() *Config {
	return &Config{
		DBPath:    DefaultDBPath,
		LogLevel:  "info",
		LogFormat: "text",
		Schedule:  DefaultSchedule,
	}
}

// Normalize fills in missing values so older or hand-edited files still work.
func (c *Config) Normalize() {
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		c.LogFormat = "text"
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
}

// Validate checks the fields that can only fail at use time.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("schedule %q: %w", c.Schedule, err)
	}
	return nil
}

// ApplyEnv overrides fields from DAYBOOK_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("DAYBOOK_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := getenv("DAYBOOK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("DAYBOOK_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := getenv("DAYBOOK_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := getenv("DAYBOOK_SCHEDULE"); v != "" {
		c.Schedule = v
	}
	c.Normalize()
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DatabasePath returns DBPath with ~ expanded. ":memory:" passes through.
func (c *Config) DatabasePath() (string, error) {
	if c.DBPath == ":memory:" {
		return c.DBPath, nil
	}
	p, err := homedir.Expand(c.DBPath)
	if err != nil {
		return "", fmt.Errorf("expand db path: %w", err)
	}
	return p, nil
}

// Load reads the config at path, writing defaults there on first run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".daybook-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
