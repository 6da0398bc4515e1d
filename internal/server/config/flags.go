package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
//	-a string   HTTP bind address (":3001")
//	-d string   database DSN (postgres://... or a SQLite file DSN)
//	-s string   token signing secret
//	-t int      access token validity, minutes
//	-o string   comma separated CORS origins
//	-l string   log level
//	-seed-admin bool   create the admin account on an empty store
//
// Only these flags are parsed, so -c/-config and flags owned by other
// packages do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagx.Owned{
		Valued:   []string{"a", "d", "s", "t", "o", "l"},
		Switches: []string{"seed-admin"},
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&config.SeedAdmin, "seed-admin", config.SeedAdmin, "create the admin account when the store is empty")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins, comma separated")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// sub-minute validities from JSON or env survive unless -t is given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "o":
			config.AllowedOrigins = flagx.SplitList(*origins)
		}
	})
}
