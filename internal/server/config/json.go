package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/atskeeper/internal/flagx"
	"github.com/dmitrijs2005/atskeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	SessionSweepInterval         timex.Duration `json:"session_sweep_interval"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config, if any.
// Keys absent from the file leave the current value untouched.
// An unreadable or malformed file panics: the server must not start on a
// half-applied configuration.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.SessionSweepInterval.Duration != 0 {
		config.SessionSweepInterval = c.SessionSweepInterval.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
