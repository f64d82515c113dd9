package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/userreg/internal/flagx"
)

// parseFlags overlays settings given on the command line.
//
//	-a string     HTTP bind address (e.g. ":8080")
//	-d string     PostgreSQL DSN; empty keeps users in memory
//	-s string     JWT HMAC secret key
//	-t duration   token validity (e.g. "1h")
//	-l string     log level
//
// Only these flags are picked out of args, so -c/-config and anything else
// on the command line is left alone.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity duration")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	return fs.Parse(args)
}
