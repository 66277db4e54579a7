package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv("ATS_HTTP_ADDR", ":8088")
	t.Setenv("ATS_GRPC_ADDR", ":50052")
	t.Setenv("ATS_DATABASE_DSN", "postgres://env")
	t.Setenv("ATS_JWT_SECRET_KEY", "env-secret")
	t.Setenv("ATS_LOG_LEVEL", "error")
	t.Setenv("ATS_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("ATS_REFRESH_TOKEN_TTL", "48h")
	t.Setenv("ATS_SESSION_SWEEP_INTERVAL", "10m")
	t.Setenv("ATS_BCRYPT_COST", "8")

	c := &Config{}
	parseEnv(c)

	assert.Equal(t, ":8088", c.EndpointAddrHTTP)
	assert.Equal(t, ":50052", c.EndpointAddrGRPC)
	assert.Equal(t, "postgres://env", c.DatabaseDSN)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, "error", c.LogLevel)
	assert.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 48*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 10*time.Minute, c.SessionSweepInterval)
	assert.Equal(t, 8, c.BcryptCost)
}

func Test_parseEnv_UnsetKeepsValues(t *testing.T) {
	t.Setenv("ATS_JWT_SECRET_KEY", "")

	c := &Config{}
	c.LoadDefaults()
	c.SecretKey = "kept"
	parseEnv(c)

	assert.Equal(t, "kept", c.SecretKey)
	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
}
