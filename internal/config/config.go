package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/HansenDafa/indostereoset-annotation/internal/llm"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Format string `yaml:"format"` // "console" or "json"
		Level  string `yaml:"level"`
	} `yaml:"log"`

	Auth struct {
		JWTSecret       string        `yaml:"jwt_secret"`
		TokenTTL        time.Duration `yaml:"token_ttl"`
		PasswordHashing string        `yaml:"password_hashing"` // "argon2" or "plain"
	} `yaml:"auth"`

	// Archive keeps a history of JSON exports. It is never read back into state.
	Archive struct {
		Enabled bool   `yaml:"enabled"`
		Type    string `yaml:"type"` // "sqlite" or "postgres"
		Path    string `yaml:"path"` // SQLite path or PostgreSQL URL
	} `yaml:"archive"`

	// Draft providers for the generator view
	Providers               []llm.ProviderConfig `yaml:"providers"`
	MaxFailuresBeforeSwitch int                  `yaml:"max_failures_before_switch"`
}

// LoadConfig loads configuration from a YAML file. A missing file leaves
// every setting at its default. envFile, when non-empty, is loaded into the
// environment first so ${VARS} in the YAML can refer to it.
func LoadConfig(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	config := &Config{}

	file, err := os.Open(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	config.applyDefaults()
	config.expandEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8002"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.PasswordHashing == "" {
		c.Auth.PasswordHashing = "argon2"
	}
	if c.Archive.Type == "" {
		c.Archive.Type = "sqlite"
	}
	if c.Archive.Path == "" && c.Archive.Type == "sqlite" {
		c.Archive.Path = "./data/exports.db"
	}
	if c.MaxFailuresBeforeSwitch == 0 {
		c.MaxFailuresBeforeSwitch = 3
	}
}

// Expand environment variables in secrets
func (c *Config) expandEnv() {
	c.Auth.JWTSecret = os.ExpandEnv(c.Auth.JWTSecret)
	c.Archive.Path = os.ExpandEnv(c.Archive.Path)
	for i := range c.Providers {
		c.Providers[i].APIKey = os.ExpandEnv(c.Providers[i].APIKey)
	}
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Auth.PasswordHashing {
	case "argon2", "plain":
	default:
		return fmt.Errorf("auth.password_hashing must be argon2 or plain, got %q", c.Auth.PasswordHashing)
	}
	switch c.Archive.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("archive.type must be sqlite or postgres, got %q", c.Archive.Type)
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("archive.path is required when the archive is enabled")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
