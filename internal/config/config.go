// Package config provides configuration management for the trade journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"trade-journal/internal/analytics"
	"trade-journal/internal/errors"
	"trade-journal/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Display   DisplayConfig   `mapstructure:"display"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	// File is the config file that was read. TemplateCreated is set when the
	// file did not exist and a template was written in its place.
	File            string `mapstructure:"-"`
	TemplateCreated bool   `mapstructure:"-"`
}

// AnalyticsConfig holds the engine policy settings.
type AnalyticsConfig struct {
	Timezone          string  `mapstructure:"timezone"`       // IANA name, "Local" or empty for the system zone
	WeekNumbering     string  `mapstructure:"week_numbering"` // legacy, iso
	BreachTolerance   float64 `mapstructure:"breach_tolerance"`
	StreakRecencyDays int     `mapstructure:"streak_recency_days"`
}

// DisplayConfig holds terminal rendering settings.
type DisplayConfig struct {
	TopN           int    `mapstructure:"top_n"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	ColorEnabled   bool   `mapstructure:"color_enabled"`
	DateFormat     string `mapstructure:"date_format"`
}

// StoreConfig holds journal database settings.
type StoreConfig struct {
	Path      string `mapstructure:"path"`
	BatchSize int    `mapstructure:"batch_size"`
}

// LoggingConfig mirrors logging.LogConfig.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-journal"
	}
	return filepath.Join(home, ".config", "trade-journal")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by the template and loading continues with it.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Logging.FilePath = expandHome(cfg.Logging.FilePath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func newViper(configDir, name string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)
	return v
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("analytics.timezone", "Local")
	v.SetDefault("analytics.week_numbering", string(analytics.WeekNumberingLegacy))
	v.SetDefault("analytics.breach_tolerance", analytics.DefaultBreachTolerance)
	v.SetDefault("analytics.streak_recency_days", analytics.DefaultRecencyDays)

	v.SetDefault("display.top_n", 10)
	v.SetDefault("display.currency_symbol", "$")
	v.SetDefault("display.color_enabled", true)
	v.SetDefault("display.date_format", "2006-01-02")

	v.SetDefault("store.path", filepath.Join(configDir, "journal.db"))
	v.SetDefault("store.batch_size", 200)

	logs := logging.DefaultLogConfig()
	v.SetDefault("logging.level", logs.Level)
	v.SetDefault("logging.console", logs.Console)
	v.SetDefault("logging.file", logs.File)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "journal.log"))
	v.SetDefault("logging.max_size", logs.MaxSize)
	v.SetDefault("logging.max_backups", logs.MaxBackups)
	v.SetDefault("logging.max_age", logs.MaxAge)
}

func loadConfigFile(configDir, name string, cfg *Config) error {
	v := newViper(configDir, name)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		path, err := createTemplateConfig(configDir, name)
		if err != nil {
			return err
		}
		cfg.TemplateCreated = true
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return err
	}
	cfg.File = v.ConfigFileUsed()
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOURNAL_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("JOURNAL_TIMEZONE"); v != "" {
		cfg.Analytics.Timezone = v
	}
	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("JOURNAL_WEEK_NUMBERING"); v != "" {
		cfg.Analytics.WeekNumbering = v
	}
	if v := os.Getenv("JOURNAL_BREACH_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analytics.BreachTolerance = f
		}
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return invalid("analytics.timezone", c.Analytics.Timezone, err.Error())
	}
	if _, err := analytics.ParseWeekNumbering(c.Analytics.WeekNumbering); err != nil {
		return invalid("analytics.week_numbering", c.Analytics.WeekNumbering, "must be 'legacy' or 'iso'")
	}
	if c.Analytics.BreachTolerance < 1 {
		return invalid("analytics.breach_tolerance", c.Analytics.BreachTolerance, "must be at least 1.0")
	}
	if c.Analytics.StreakRecencyDays < 0 {
		return invalid("analytics.streak_recency_days", c.Analytics.StreakRecencyDays, "must be non-negative")
	}
	if c.Display.TopN < 1 {
		return invalid("display.top_n", c.Display.TopN, "must be at least 1")
	}
	if c.Store.Path == "" {
		return invalid("store.path", c.Store.Path, "must not be empty")
	}
	if c.Store.BatchSize < 1 {
		return invalid("store.batch_size", c.Store.BatchSize, "must be at least 1")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return invalid("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	return nil
}

func invalid(field string, value interface{}, msg string) error {
	return fmt.Errorf("%w: %v", errors.ErrConfigInvalid, errors.NewValidationError(field, value, msg))
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	switch tz := strings.TrimSpace(c.Analytics.Timezone); tz {
	case "", "Local", "local":
		return time.Local, nil
	default:
		return time.LoadLocation(tz)
	}
}

// EngineOptions builds the analytics options from the analytics section.
func (c *Config) EngineOptions() (analytics.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return analytics.Options{}, fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
	}
	weeks, err := analytics.ParseWeekNumbering(c.Analytics.WeekNumbering)
	if err != nil {
		return analytics.Options{}, fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
	}

	opts := analytics.DefaultOptions()
	opts.Location = loc
	opts.WeekNumbering = weeks
	opts.BreachTolerance = c.Analytics.BreachTolerance
	opts.RecencyDays = c.Analytics.StreakRecencyDays
	return opts, nil
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
