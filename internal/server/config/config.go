// Package config handles configuration for the server component: defaults,
// JSON overlay, environment overlay and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
)

// Config holds runtime settings for the authkeeper server.
//
// SecretKey signs session tokens (HS256) and has no default: the server
// refuses to start without one. Rotating it invalidates every issued token.
type Config struct {
	EndpointAddr                string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	HashMemoryKB                uint32
	HashIterations              uint32
	HashParallelism             uint8
	AllowedOrigins              []string
	ShutdownTimeout             time.Duration
	SeedAdmin                   bool
	AdminPassword               string
	LogLevel                    string
	LogFormat                   string
}

// LoadDefaults populates Config with development defaults. The default DSN is
// a local SQLite file; a postgres:// DSN switches to PostgreSQL.
func (c *Config) LoadDefaults() {
	hc := cryptox.DefaultHasherConfig()

	c.EndpointAddr = ":3001"
	c.DatabaseDSN = "file:authkeeper.db?_pragma=foreign_keys(1)"
	c.SecretKey = ""
	c.AccessTokenValidityDuration = time.Hour
	c.HashMemoryKB = hc.MemoryKB
	c.HashIterations = hc.Iterations
	c.HashParallelism = hc.Parallelism
	c.AllowedOrigins = []string{"http://localhost:3000"}
	c.ShutdownTimeout = 10 * time.Second
	c.SeedAdmin = true
	c.AdminPassword = ""
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// HasherConfig returns the password hashing work factor.
func (c *Config) HasherConfig() cryptox.HasherConfig {
	return cryptox.HasherConfig{
		MemoryKB:    c.HashMemoryKB,
		Iterations:  c.HashIterations,
		Parallelism: c.HashParallelism,
	}
}

// Validate reports configuration that would make the server unsafe or unable
// to run.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required (-s, AUTHKEEPER_SECRET_KEY or secret_key)"))
	}
	if c.EndpointAddr == "" {
		errs = append(errs, errors.New("endpoint address is empty"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is empty"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	if err := c.HasherConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
// Malformed input panics, as the process cannot start with it.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
