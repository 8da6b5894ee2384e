package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the cover fetcher
type Config struct {
	// IGDB / Twitch client credentials and endpoints
	IGDB IGDBConfig `yaml:"igdb" json:"igdb"`

	// Request pacing and rate-limit recovery
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Local cover cache
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Resume checkpoint
	Progress ProgressConfig `yaml:"progress" json:"progress"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// IGDBConfig holds the catalog API configuration
type IGDBConfig struct {
	ClientID       string        `yaml:"client_id" json:"client_id"`
	ClientSecret   string        `yaml:"client_secret" json:"client_secret"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	TokenURL       string        `yaml:"token_url" json:"token_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	TokenTimeout   time.Duration `yaml:"token_timeout" json:"token_timeout"`
	BatchSize      int           `yaml:"batch_size" json:"batch_size"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	MinInterval time.Duration `yaml:"min_interval" json:"min_interval"`
	Cooldown    time.Duration `yaml:"cooldown" json:"cooldown"`
	MaxRetries  int           `yaml:"max_retries" json:"max_retries"`
}

// CacheConfig holds cover cache configuration
type CacheConfig struct {
	Directory       string        `yaml:"directory" json:"directory"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
	KnownPathsSize  int           `yaml:"known_paths_size" json:"known_paths_size"`
}

// ProgressConfig holds checkpoint configuration
type ProgressConfig struct {
	File string `yaml:"file" json:"file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds the optional metrics listener
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// MaxBatchSize is the largest page the catalog API accepts
const MaxBatchSize = 500

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		IGDB: IGDBConfig{
			BaseURL:        "https://api.igdb.com/v4",
			TokenURL:       "https://id.twitch.tv/oauth2/token",
			RequestTimeout: 30 * time.Second,
			TokenTimeout:   10 * time.Second,
			BatchSize:      MaxBatchSize,
		},
		RateLimit: RateLimitConfig{
			MinInterval: 300 * time.Millisecond,
			Cooldown:    60 * time.Second,
			MaxRetries:  1,
		},
		Cache: CacheConfig{
			Directory:       "./cache/covers",
			DownloadTimeout: 30 * time.Second,
			KnownPathsSize:  4096,
		},
		Progress: ProgressConfig{
			File: "igdb_progress.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// The Twitch names are what the server side of the project already uses
	if v := firstEnv("IGDBCOVERS_CLIENT_ID", "TWITCH_CLIENT_ID"); v != "" {
		c.IGDB.ClientID = v
	}
	if v := firstEnv("IGDBCOVERS_CLIENT_SECRET", "TWITCH_CLIENT_SECRET"); v != "" {
		c.IGDB.ClientSecret = v
	}
	if v := os.Getenv("IGDBCOVERS_BASE_URL"); v != "" {
		c.IGDB.BaseURL = v
	}
	if v := os.Getenv("IGDBCOVERS_TOKEN_URL"); v != "" {
		c.IGDB.TokenURL = v
	}
	if v := os.Getenv("IGDBCOVERS_CACHE_DIR"); v != "" {
		c.Cache.Directory = v
	}
	if v := os.Getenv("IGDBCOVERS_PROGRESS_FILE"); v != "" {
		c.Progress.File = v
	}
	if v := os.Getenv("IGDBCOVERS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IGDBCOVERS_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}

	if v := os.Getenv("IGDBCOVERS_MIN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid IGDBCOVERS_MIN_INTERVAL: %w", err)
		}
		c.RateLimit.MinInterval = d
	}
	if v := os.Getenv("IGDBCOVERS_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IGDBCOVERS_BATCH_SIZE: %w", err)
		}
		c.IGDB.BatchSize = n
	}

	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// LoadFromFile loads configuration from a YAML file. JSON settings files
// such as data/settings.json parse as well.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"igdbcovers.yaml",
		".igdbcovers.yaml",
		filepath.Join("data", "settings.json"),
		filepath.Join(home, ".config", "igdbcovers", "config.yaml"),
		filepath.Join(home, ".igdbcovers.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Missing credentials are
// not a configuration error; the fetch command reports them itself.
func (c *Config) Validate() error {
	var errs []error

	if c.IGDB.BaseURL == "" {
		errs = append(errs, errors.New("IGDB base URL is required"))
	}
	if c.IGDB.TokenURL == "" {
		errs = append(errs, errors.New("token URL is required"))
	}
	if c.IGDB.BatchSize <= 0 || c.IGDB.BatchSize > MaxBatchSize {
		errs = append(errs, fmt.Errorf("batch size must be between 1 and %d", MaxBatchSize))
	}
	if c.IGDB.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.IGDB.TokenTimeout <= 0 {
		errs = append(errs, errors.New("token timeout must be positive"))
	}

	if c.RateLimit.MinInterval < 0 {
		errs = append(errs, errors.New("min interval cannot be negative"))
	}
	if c.RateLimit.Cooldown < 0 {
		errs = append(errs, errors.New("cooldown cannot be negative"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Cache.Directory == "" {
		errs = append(errs, errors.New("cache directory is required"))
	}
	if c.Cache.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Progress.File == "" {
		errs = append(errs, errors.New("progress file is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// HasCredentials reports whether both client credentials are set
func (c *Config) HasCredentials() bool {
	return c.IGDB.ClientID != "" && c.IGDB.ClientSecret != ""
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if dir, ok := flags["cache-dir"].(string); ok && dir != "" {
		c.Cache.Directory = dir
	}
	if file, ok := flags["progress-file"].(string); ok && file != "" {
		c.Progress.File = file
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if addr, ok := flags["metrics-addr"].(string); ok && addr != "" {
		c.Metrics.Addr = addr
	}
	if id, ok := flags["client-id"].(string); ok && id != "" {
		c.IGDB.ClientID = id
	}
	if secret, ok := flags["client-secret"].(string); ok && secret != "" {
		c.IGDB.ClientSecret = secret
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igdbcovers.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
