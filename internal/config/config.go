// Package config loads edgar-mcp settings from a YAML file, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "EDGAR_MCP"

// Config represents the complete application configuration.
type Config struct {
	Identity IdentityConfig `mapstructure:"identity"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// IdentityConfig names the application in the User-Agent sent to SEC.
type IdentityConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 disables pacing
}

// FetchConfig holds filing fetcher settings.
type FetchConfig struct {
	Concurrency  int  `mapstructure:"concurrency"`
	SkipFailed   bool `mapstructure:"skip_failed"`
	DefaultLimit int  `mapstructure:"default_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/edgar-mcp.yaml
//  2. ~/.edgar-mcp/edgar-mcp.yaml
//  3. /etc/edgar-mcp/edgar-mcp.yaml
//
// Environment variables override file values, e.g. EDGAR_MCP_IDENTITY_EMAIL.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("edgar-mcp")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".edgar-mcp"))
	v.AddConfigPath("/etc/edgar-mcp")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

// Validate checks the settings the EDGAR client cannot work without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Identity.Name) == "" {
		return errors.New("identity.name must be set")
	}
	if !strings.Contains(c.Identity.Email, "@") {
		return fmt.Errorf("identity.email %q is not an email address", c.Identity.Email)
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1, got %d", c.Fetch.Concurrency)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("identity.name", "edgar-mcp")
	v.SetDefault("identity.email", "test@test.com")

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.rate_limit", 0)

	v.SetDefault("fetch.concurrency", 1)
	v.SetDefault("fetch.skip_failed", false)
	v.SetDefault("fetch.default_limit", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
