package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/logging"
)

// Config holds runtime settings for the posync agent.
//
// BackendCommand switches the supervisor into native mode: when set, the
// agent owns the backend process and restarts it on reconnect. When empty
// the backend is hosted elsewhere and reconnect only re-probes it.
type Config struct {
	BackendURL     string
	BackendPort    int
	HealthPath     string
	ProbeInterval  time.Duration
	ProbeTimeout   time.Duration
	SettleDelay    time.Duration
	WarmupDelay    time.Duration
	DatabasePath   string
	SecretKey      string
	BackendCommand string
	GRPCHealthAddr string
	LogFormat      string
	LogLevel       string
	AutoSync       bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendPort = common.DefaultBackendPort
	c.BackendURL = fmt.Sprintf("http://localhost:%d", c.BackendPort)
	c.HealthPath = common.HealthPath
	c.ProbeInterval = 5 * time.Second
	c.ProbeTimeout = 3 * time.Second
	c.SettleDelay = 1 * time.Second
	c.WarmupDelay = 3 * time.Second
	c.DatabasePath = "posync.db"
	c.SecretKey = "secretKey"
	c.BackendCommand = ""
	c.GRPCHealthAddr = ""
	c.LogFormat = logging.FormatText
	c.LogLevel = logging.LevelInfo
	c.AutoSync = true
}

// Native reports whether the agent controls the backend process.
func (c *Config) Native() bool {
	return c.BackendCommand != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
