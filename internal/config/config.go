package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL   = "https://voicenotesapi.onrender.com"
	DefaultAPITimeout   = 60 * time.Second
	DefaultDBPath       = "data/notes.db"
	DefaultPollAttempts = 12
	DefaultPollInterval = 5 * time.Second
	DefaultListenAddr   = "127.0.0.1:8088"
	DefaultEventChannel = "voicenotes:summary"
	DefaultBucket       = "voicenotes-audio"
)

// Config is the application configuration, read from an optional YAML file
// and overridden by environment variables.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Store   StoreConfig   `yaml:"store"`
	Summary SummaryConfig `yaml:"summary"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Redis   RedisConfig   `yaml:"redis"`
	Archive ArchiveConfig `yaml:"archive"`
}

// APIConfig configures the remote summarization service client.
type APIConfig struct {
	BaseURL string            `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration     `yaml:"timeout" validate:"gt=0"`
	Headers map[string]string `yaml:"headers"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite3 postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// SummaryConfig bounds the summary polling loop.
type SummaryConfig struct {
	PollAttempts int           `yaml:"poll_attempts" validate:"min=1,max=120"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"gte=0"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr" validate:"required"`
	Environment string `yaml:"environment" validate:"omitempty,oneof=development production"`
}

type LogConfig struct {
	Development bool `yaml:"development"`
}

// RedisConfig enables publishing summary changes. Empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Channel  string `yaml:"channel"`
}

// ArchiveConfig configures the S3-compatible audio archive. Empty Endpoint
// disables it.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
			Timeout: DefaultAPITimeout,
		},
		Store: StoreConfig{
			Driver: "sqlite3",
			DSN:    DefaultDBPath,
		},
		Summary: SummaryConfig{
			PollAttempts: DefaultPollAttempts,
			PollInterval: DefaultPollInterval,
		},
		Server: ServerConfig{
			Addr:        DefaultListenAddr,
			Environment: "development",
		},
		Redis: RedisConfig{
			Channel: DefaultEventChannel,
		},
		Archive: ArchiveConfig{
			Bucket: DefaultBucket,
		},
	}
}

// Load reads configuration with the following priority:
// environment variables > config file > defaults.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := ValidateTimeout(c.API.Timeout, "api"); err != nil {
		return err
	}
	if err := ValidatePollWindow(c.Summary.PollAttempts, c.Summary.PollInterval); err != nil {
		return err
	}
	return nil
}

// InitializeConfig loads the .env file and the configuration.
// This is the main entry point for configuration loading
func InitializeConfig(path string) (*Config, error) {
	if _, err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	if path == "" {
		path = os.Getenv("VOICENOTES_CONFIG")
	}
	return Load(path)
}
