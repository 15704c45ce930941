package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "REEL"

// Config holds all application configuration
type Config struct {
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Session   SessionConfig   `mapstructure:"session"`
	Cache     CacheConfig     `mapstructure:"cache"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TMDBConfig holds catalog API configuration
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SessionConfig is the fallback session storage, used when no keyring is available
type SessionConfig struct {
	SessionID string `mapstructure:"session_id"`
	AccountID int    `mapstructure:"account_id"`
	Username  string `mapstructure:"username"`
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Dir               string `mapstructure:"dir"`                // Empty keeps the cache in memory only
	SubscriberQueue   int    `mapstructure:"subscriber_queue"`   // Change sets buffered per view
	WriterConcurrency int    `mapstructure:"writer_concurrency"` // Movies written in parallel
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// TelemetryConfig holds metrics configuration
type TelemetryConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"` // e.g. ":9464"; empty disables /metrics
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
			Timeout:      30 * time.Second,
		},
		Cache: CacheConfig{
			Dir:               defaultCachePath(),
			SubscriberQueue:   64,
			WriterConcurrency: 4,
		},
		UI: UIConfig{
			Theme: "default",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != ""
}

// HasSession returns true if a session is stored in the config file
func (c *Config) HasSession() bool {
	return c.Session.SessionID != ""
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel", "reel.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel", "reel.log")
	}
}

// DefaultDir returns the default config directory for the current OS
func DefaultDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reel", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel", "cache")
	}
}

// Manager loads and saves the config file. Each Manager owns its own
// viper instance.
type Manager struct {
	v   *viper.Viper
	dir string
}

// NewManager creates a manager for the config directory dir (DefaultDir() when empty)
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Manager{v: viper.New(), dir: dir}
}

// Viper exposes the underlying instance so CLI flags can be bound to keys
func (m *Manager) Viper() *viper.Viper {
	return m.v
}

// Path returns the config file path
func (m *Manager) Path() string {
	return filepath.Join(m.dir, "config.yaml")
}

// setDefaults registers every key so environment overrides reach Unmarshal
func (m *Manager) setDefaults(cfg *Config) {
	m.v.SetDefault("tmdb.api_key", cfg.TMDB.APIKey)
	m.v.SetDefault("tmdb.base_url", cfg.TMDB.BaseURL)
	m.v.SetDefault("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	m.v.SetDefault("tmdb.timeout", cfg.TMDB.Timeout)

	m.v.SetDefault("session.session_id", cfg.Session.SessionID)
	m.v.SetDefault("session.account_id", cfg.Session.AccountID)
	m.v.SetDefault("session.username", cfg.Session.Username)

	m.v.SetDefault("cache.dir", cfg.Cache.Dir)
	m.v.SetDefault("cache.subscriber_queue", cfg.Cache.SubscriberQueue)
	m.v.SetDefault("cache.writer_concurrency", cfg.Cache.WriterConcurrency)

	m.v.SetDefault("ui.theme", cfg.UI.Theme)

	m.v.SetDefault("logging.file", cfg.Logging.File)
	m.v.SetDefault("logging.level", cfg.Logging.Level)

	m.v.SetDefault("telemetry.metrics_addr", cfg.Telemetry.MetricsAddr)
}

// Load loads configuration from file and environment
func (m *Manager) Load() (*Config, error) {
	cfg := DefaultConfig()
	m.setDefaults(cfg)

	m.v.SetConfigName("config")
	m.v.SetConfigType("yaml")
	m.v.AddConfigPath(m.dir)
	m.v.AddConfigPath(".")

	// Environment variable overrides (REEL_TMDB_API_KEY, ...)
	m.v.SetEnvPrefix(envPrefix)
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()

	// Read config file if it exists
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := m.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to file
func (m *Manager) Save(cfg *Config) error {
	m.v.Set("tmdb.api_key", cfg.TMDB.APIKey)
	m.v.Set("tmdb.base_url", cfg.TMDB.BaseURL)
	m.v.Set("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	m.v.Set("tmdb.timeout", cfg.TMDB.Timeout.String())

	m.v.Set("cache.dir", cfg.Cache.Dir)
	m.v.Set("cache.subscriber_queue", cfg.Cache.SubscriberQueue)
	m.v.Set("cache.writer_concurrency", cfg.Cache.WriterConcurrency)

	m.v.Set("ui.theme", cfg.UI.Theme)

	m.v.Set("logging.file", cfg.Logging.File)
	m.v.Set("logging.level", cfg.Logging.Level)

	m.v.Set("telemetry.metrics_addr", cfg.Telemetry.MetricsAddr)

	return m.SaveSession(cfg.Session)
}

// SaveSession updates just the session fields in the configuration
func (m *Manager) SaveSession(s SessionConfig) error {
	m.v.Set("session.session_id", s.SessionID)
	m.v.Set("session.account_id", s.AccountID)
	m.v.Set("session.username", s.Username)
	return m.write()
}

// ClearSession removes the stored session while preserving other settings
func (m *Manager) ClearSession() error {
	return m.SaveSession(SessionConfig{})
}

func (m *Manager) write() error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := m.v.WriteConfigAs(m.Path()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes all cached data under dir
func ClearCache(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
