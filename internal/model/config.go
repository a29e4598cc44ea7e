package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds connection and throttling settings for the remote
// REST service.
type APIConfig struct {
	// WebhookURL is the static access path to the REST root, including
	// the embedded credential segment. Prefer storing it in the OS
	// keyring (see internal/credential); this field is the fallback.
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`

	// CacheTTLSec is how long a cached response stays valid.
	CacheTTLSec int `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`

	// MinCallIntervalMS is the minimum spacing between outbound calls.
	MinCallIntervalMS int `mapstructure:"min_call_interval_ms" yaml:"min_call_interval_ms"`

	// QuotaBackoffSec is the wait before retrying a quota-exceeded call.
	QuotaBackoffSec int `mapstructure:"quota_backoff_sec" yaml:"quota_backoff_sec"`

	// PageSize is the task-listing page size.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// MaxTaskRecords caps how many task records a single report fetch
	// will accumulate across pages. Larger result sets are truncated,
	// not an error.
	MaxTaskRecords int `mapstructure:"max_task_records" yaml:"max_task_records"`
}

// ReportConfig holds report-level defaults that vary between
// deployments; both are overridable per invocation.
type ReportConfig struct {
	// CompletedStatus is the status code meaning "completed" for the
	// plan-vs-fact report.
	CompletedStatus int `mapstructure:"completed_status" yaml:"completed_status"`

	// DateField is the task field the period filter applies to.
	DateField string `mapstructure:"date_field" yaml:"date_field"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	Report ReportConfig `mapstructure:"report" yaml:"report"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/resreport/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "resreport", "config.yaml")
}

// defaultAppConfig returns the built-in defaults.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			CacheTTLSec:       300,
			MinCallIntervalMS: 1000,
			QuotaBackoffSec:   2,
			PageSize:          50,
			MaxTaskRecords:    1000,
		},
		Report: ReportConfig{
			CompletedStatus: StatusCompleted,
			DateField:       "CLOSED_DATE",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.cache_ttl_sec", 300)
	v.SetDefault("api.min_call_interval_ms", 1000)
	v.SetDefault("api.quota_backoff_sec", 2)
	v.SetDefault("api.page_size", 50)
	v.SetDefault("api.max_task_records", 1000)
	v.SetDefault("report.completed_status", StatusCompleted)
	v.SetDefault("report.date_field", "CLOSED_DATE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("report", cfg.Report)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
