package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the authkeeper CLI.
//
//   - ServerURL: base URL of the authkeeper HTTP API.
//   - StateDir: directory holding the local session database.
//   - RequestTimeout: upper bound for a single API call.
type Config struct {
	ServerURL      string
	StateDir       string
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3001"
	c.StateDir = "authkeeper"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// Validate reports settings the client cannot work with.
func (c *Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server URL %q must be an absolute http(s) URL", c.ServerURL))
	}
	if c.StateDir == "" {
		errs = append(errs, errors.New("state directory is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
