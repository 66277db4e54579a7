package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/flagx"
)

// serverFlags lists the flags owned by the server config.
var serverFlags = []string{"-a", "-g", "-d", "-s", "-t", "-r", "-b", "-w", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":8000")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-b int      bcrypt cost
//	-w int      expired session sweep interval, minutes (0 disables)
//	-l string   log level
//
// Arguments are first narrowed with flagx.FilterArgs so flags owned by other
// components (e.g. -c) do not break parsing.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the REST API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	sweepInterval := fs.Int("w", int(config.SessionSweepInterval.Minutes()), "expired session sweep interval (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["t"] {
		config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	}
	if set["r"] {
		config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
	}
	if set["w"] {
		config.SessionSweepInterval = time.Duration(*sweepInterval) * time.Minute
	}
}
