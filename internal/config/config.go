package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DateLayout is the layout used for filter window dates.
const DateLayout = "2006-01-02"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Config represents the complete application configuration
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Report   ReportConfig   `mapstructure:"report"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SourceConfig selects where observations are loaded from
type SourceConfig struct {
	Type    string        `mapstructure:"type"` // "csv", "http", "sqlite" or "postgres"
	Path    string        `mapstructure:"path"`
	URL     string        `mapstructure:"url"`
	DSN     string        `mapstructure:"dsn"`
	Table   string        `mapstructure:"table"`
	Timeout time.Duration `mapstructure:"timeout"`

	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`

	// AllowDuplicateIDs accepts datasets where an ID repeats across rows
	AllowDuplicateIDs bool `mapstructure:"allow_duplicate_ids"`
}

// FilterConfig holds the default date window. Empty values mean the dataset bound.
type FilterConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// ReportConfig holds presentation settings
type ReportConfig struct {
	Format string `mapstructure:"format"`
	TopN   int    `mapstructure:"top_n"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	// BIKEPULSE_SOURCE_PATH overrides source.path, and so on
	v.SetEnvPrefix("BIKEPULSE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// Every key needs an entry here, otherwise AutomaticEnv cannot override it
// when the file omits it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.type", "csv")
	v.SetDefault("source.path", "./data/all_data.csv")
	v.SetDefault("source.url", "")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.table", "observations")
	v.SetDefault("source.timeout", "30s")
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.retry_delay_base", "1s")
	v.SetDefault("source.allow_duplicate_ids", false)

	v.SetDefault("filter.start", "")
	v.SetDefault("filter.end", "")

	v.SetDefault("report.format", "text")
	v.SetDefault("report.top_n", 5)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	switch c.Source.Type {
	case "csv":
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for csv sources")
		}
	case "http":
		if c.Source.URL == "" {
			return fmt.Errorf("source.url is required for http sources")
		}
		if c.Source.MaxRetries < 1 {
			return fmt.Errorf("source.max_retries must be at least 1")
		}
	case "sqlite":
		if c.Source.Path == "" && c.Source.DSN == "" {
			return fmt.Errorf("source.path or source.dsn is required for sqlite sources")
		}
	case "postgres":
		if c.Source.DSN == "" {
			return fmt.Errorf("source.dsn is required for postgres sources")
		}
	default:
		return fmt.Errorf("source.type must be one of: csv, http, sqlite, postgres")
	}
	if (c.Source.Type == "sqlite" || c.Source.Type == "postgres") && c.Source.Table == "" {
		return fmt.Errorf("source.table is required for sql sources")
	}
	if c.Source.Timeout < time.Second {
		return fmt.Errorf("source.timeout must be at least 1 second")
	}

	start, end, err := c.Filter.Dates()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("filter.start must not be after filter.end")
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Report.Format] {
		return fmt.Errorf("report.format must be one of: text, json")
	}
	if c.Report.TopN < 1 {
		return fmt.Errorf("report.top_n must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Dates parses the configured window. Unset ends are returned as zero times.
func (f FilterConfig) Dates() (start, end time.Time, err error) {
	if f.Start != "" {
		start, err = time.Parse(DateLayout, f.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("filter.start must be formatted as YYYY-MM-DD: %w", err)
		}
	}
	if f.End != "" {
		end, err = time.Parse(DateLayout, f.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("filter.end must be formatted as YYYY-MM-DD: %w", err)
		}
	}
	return start, end, nil
}
