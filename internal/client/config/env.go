package config

import "github.com/dmitrijs2005/authkeeper/internal/flagx"

// parseEnv overlays AUTHKEEPER_SERVER_URL, AUTHKEEPER_STATE_DIR and
// AUTHKEEPER_REQUEST_TIMEOUT. A malformed timeout panics.
func parseEnv(cfg *Config) {
	flagx.EnvString("AUTHKEEPER_SERVER_URL", &cfg.ServerURL)
	flagx.EnvString("AUTHKEEPER_STATE_DIR", &cfg.StateDir)
	flagx.EnvString("AUTHKEEPER_CLIENT_LOG_LEVEL", &cfg.LogLevel)
	if err := flagx.EnvDuration("AUTHKEEPER_REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		panic(err)
	}
}
