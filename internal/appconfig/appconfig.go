// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// DefaultBaseURL is the HubSpot API origin used when the config omits one.
	DefaultBaseURL = "https://api.hubapi.com"
	// AccessTokenEnvVar names the environment variable consulted when no token
	// is supplied explicitly.
	AccessTokenEnvVar = "HUBSPOT_ACCESS_TOKEN"
	// defaultRequestTimeout is the default timeout for HubSpot HTTP requests.
	defaultRequestTimeout = 30 * time.Second
)

// Config represents the top-level application configuration.
type Config struct {
	AccessToken    string `json:"accessToken,omitempty" mapstructure:"accessToken"`
	BaseURL        string `json:"baseUrl,omitempty" mapstructure:"baseUrl"`
	Debug          bool   `json:"debug" mapstructure:"debug"`
	TimeoutSeconds int    `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile        string `json:"logFile,omitempty" mapstructure:"logFile"`
	ConfigPath     string `json:"-" mapstructure:"-"`
}

// RequestTimeout returns the timeout duration for HubSpot HTTP requests,
// falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "hublink.log"
}

// BaseURLValue returns the HubSpot API origin, applying the default if not set.
func (c Config) BaseURLValue() string {
	if u := strings.TrimSpace(c.BaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return DefaultBaseURL
}

// ResolveAccessToken returns the first non-empty credential among the
// explicit override, the configured token, and the environment variable.
func (c Config) ResolveAccessToken(override string) (string, error) {
	for _, candidate := range []string{override, c.AccessToken, os.Getenv(AccessTokenEnvVar)} {
		if token := strings.TrimSpace(candidate); token != "" {
			return token, nil
		}
	}
	return "", fmt.Errorf("%s environment variable is required", AccessTokenEnvVar)
}

// Load reads the configuration file at path, or the default path when path is
// empty. A missing default file yields a zero Config rather than an error so
// the binary can run on environment variables alone.
func Load(path string) (*Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ConfigPath = path
	return &cfg, nil
}
