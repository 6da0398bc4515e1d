// Package config loads runtime configuration for the authkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment: AUTHKEEPER_SERVER_URL, AUTHKEEPER_STATE_DIR,
//     AUTHKEEPER_REQUEST_TIMEOUT, AUTHKEEPER_CLIENT_LOG_LEVEL.
//  4. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3001",
//	  "state_dir": "authkeeper",
//	  "request_timeout": "10s",
//	  "log_level": "warn"
//	}
package config
