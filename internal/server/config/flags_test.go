package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-g", ":6000", "-d", "postgres://db", "-r=false",
				"-l", "/var/lib/pos/local.db", "-s", "secret", "-t", "90", "-f", "zap",
			},
			expected: &Config{
				HTTPAddr:          "127.0.0.1:9090",
				GRPCHealthAddr:    ":6000",
				DatabaseDSN:       "postgres://db",
				RemoteEnabled:     false,
				LocalDatabasePath: "/var/lib/pos/local.db",
				SecretKey:         "secret",
				TokenValidity:     90 * time.Minute,
				LogFormat:         "zap",
				LogLevel:          "info",
			},
		},
		{
			name:        "bad validity",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := base()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
