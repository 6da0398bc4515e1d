package config

import (
	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

const envPrefix = "AUTHKEEPER_"

// parseEnv overlays AUTHKEEPER_* variables onto config. Unset or empty
// variables are ignored; malformed values panic.
func parseEnv(config *Config) {
	flagx.EnvString(envPrefix+"ENDPOINT_ADDR", &config.EndpointAddr)
	flagx.EnvString(envPrefix+"DATABASE_DSN", &config.DatabaseDSN)
	flagx.EnvString(envPrefix+"SECRET_KEY", &config.SecretKey)
	flagx.EnvString(envPrefix+"ADMIN_PASSWORD", &config.AdminPassword)
	flagx.EnvString(envPrefix+"LOG_LEVEL", &config.LogLevel)
	flagx.EnvString(envPrefix+"LOG_FORMAT", &config.LogFormat)
	flagx.EnvList(envPrefix+"ALLOWED_ORIGINS", &config.AllowedOrigins)

	must(flagx.EnvDuration(envPrefix+"ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration))
	must(flagx.EnvDuration(envPrefix+"SHUTDOWN_TIMEOUT", &config.ShutdownTimeout))
	must(flagx.EnvUint(envPrefix+"HASH_MEMORY_KB", &config.HashMemoryKB))
	must(flagx.EnvUint(envPrefix+"HASH_ITERATIONS", &config.HashIterations))
	must(flagx.EnvBool(envPrefix+"SEED_ADMIN", &config.SeedAdmin))

	var parallelism uint32
	must(flagx.EnvUint(envPrefix+"HASH_PARALLELISM", &parallelism))
	if parallelism > 0 && parallelism <= 255 {
		config.HashParallelism = uint8(parallelism)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
