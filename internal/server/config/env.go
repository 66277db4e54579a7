package config

import "github.com/spf13/viper"

// EnvPrefix namespaces every environment variable read by the server,
// e.g. ATS_JWT_SECRET_KEY.
const EnvPrefix = "ATS"

// parseEnv overlays values from ATS_* environment variables.
// Only variables that are actually set are applied.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("JWT_SECRET_KEY", &config.SecretKey)
	str("LOG_LEVEL", &config.LogLevel)

	if v.IsSet("ACCESS_TOKEN_TTL") {
		config.AccessTokenValidityDuration = v.GetDuration("ACCESS_TOKEN_TTL")
	}
	if v.IsSet("REFRESH_TOKEN_TTL") {
		config.RefreshTokenValidityDuration = v.GetDuration("REFRESH_TOKEN_TTL")
	}
	if v.IsSet("SESSION_SWEEP_INTERVAL") {
		config.SessionSweepInterval = v.GetDuration("SESSION_SWEEP_INTERVAL")
	}
	if v.IsSet("BCRYPT_COST") {
		config.BcryptCost = v.GetInt("BCRYPT_COST")
	}
}
