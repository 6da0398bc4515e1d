package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept "1h" style strings or integer nanoseconds. Pointer fields tell an
// explicit false or zero apart from an absent key.
type JsonConfig struct {
	EndpointAddr                string          `json:"endpoint_addr"`
	DatabaseDSN                 string          `json:"database_dsn"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	HashMemoryKB                uint32          `json:"hash_memory_kb"`
	HashIterations              uint32          `json:"hash_iterations"`
	HashParallelism             uint8           `json:"hash_parallelism"`
	AllowedOrigins              []string        `json:"allowed_origins"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
	SeedAdmin                   *bool           `json:"seed_admin"`
	AdminPassword               string          `json:"admin_password"`
	LogLevel                    string          `json:"log_level"`
	LogFormat                   string          `json:"log_format"`
}

// parseJson overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current values. Unreadable files and invalid JSON
// panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.HashMemoryKB != 0 {
		config.HashMemoryKB = c.HashMemoryKB
	}
	if c.HashIterations != 0 {
		config.HashIterations = c.HashIterations
	}
	if c.HashParallelism != 0 {
		config.HashParallelism = c.HashParallelism
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.SeedAdmin != nil {
		config.SeedAdmin = *c.SeedAdmin
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
