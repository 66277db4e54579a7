package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{
			"-a", "127.0.0.1:8080", "-g", "127.0.0.1:9090", "-d", "db", "-s", "secret",
			"-t", "1", "-r", "3", "-b", "10", "-w", "5", "-l", "debug",
		}, expected: &Config{
			EndpointAddrHTTP:             "127.0.0.1:8080",
			EndpointAddrGRPC:             "127.0.0.1:9090",
			DatabaseDSN:                  "db",
			SecretKey:                    "secret",
			AccessTokenValidityDuration:  1 * time.Minute,
			RefreshTokenValidityDuration: 3 * time.Minute,
			BcryptCost:                   10,
			SessionSweepInterval:         5 * time.Minute,
			LogLevel:                     "debug",
		}},
		{name: "foreign flags are ignored", args: []string{"-c", "cfg.json", "-s", "secret"},
			expected: &Config{SecretKey: "secret"}},
		{name: "zero sweep disables", args: []string{"-w", "0"},
			expected: &Config{}},
		{name: "bad int panics", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}

func TestParseFlags_KeepsUnsetDurations(t *testing.T) {
	config := &Config{}
	config.LoadDefaults()

	parseFlags(config, []string{"-s", "secret"})

	assert.Equal(t, 15*time.Minute, config.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, config.RefreshTokenValidityDuration)
	assert.Equal(t, time.Hour, config.SessionSweepInterval)
}
