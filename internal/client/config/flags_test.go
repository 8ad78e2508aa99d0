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

	expected := base()
	expected.BackendURL = "http://10.0.0.5:9090"
	expected.ProbeInterval = 10 * time.Second
	expected.BackendCommand = "posync-server"
	expected.LogFormat = "zap"

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name:     "known flags applied",
			args:     []string{"cmd", "-u", "http://10.0.0.5:9090", "-i", "10", "-b", "posync-server", "-l", "zap", "-x", "ignored"},
			expected: expected,
		},
		{
			name:        "bad interval",
			args:        []string{"cmd", "-i", "abc"},
			expectPanic: true,
		},
	}

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := base()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
			assert.True(t, cfg.Native())
		})
	}
}
