package config

import (
	"github.com/dmitrijs2005/posync/internal/flagx"
	"github.com/dmitrijs2005/posync/internal/timex"
)

// JsonConfig is the on-disk shape of the agent config. Only non-zero values
// override what is already in Config, so a file may set a single key.
type JsonConfig struct {
	BackendURL     string         `json:"backend_url"`
	BackendPort    int            `json:"backend_port"`
	HealthPath     string         `json:"health_path"`
	ProbeInterval  timex.Duration `json:"probe_interval"`
	ProbeTimeout   timex.Duration `json:"probe_timeout"`
	SettleDelay    timex.Duration `json:"settle_delay"`
	WarmupDelay    timex.Duration `json:"warmup_delay"`
	DatabasePath   string         `json:"database_path"`
	SecretKey      string         `json:"secret_key"`
	BackendCommand string         `json:"backend_command"`
	GRPCHealthAddr string         `json:"grpc_health_addr"`
	LogFormat      string         `json:"log_format"`
	LogLevel       string         `json:"log_level"`
	AutoSync       *bool          `json:"auto_sync"`
}

// parseJson overlays cfg with the file named by -c / -config.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	var jc JsonConfig
	if err := flagx.ReadJSON(path, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.HealthPath, jc.HealthPath)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.BackendCommand, jc.BackendCommand)
	setString(&cfg.GRPCHealthAddr, jc.GRPCHealthAddr)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.BackendPort != 0 {
		cfg.BackendPort = jc.BackendPort
	}
	if jc.ProbeInterval.Duration != 0 {
		cfg.ProbeInterval = jc.ProbeInterval.Duration
	}
	if jc.ProbeTimeout.Duration != 0 {
		cfg.ProbeTimeout = jc.ProbeTimeout.Duration
	}
	if jc.SettleDelay.Duration != 0 {
		cfg.SettleDelay = jc.SettleDelay.Duration
	}
	if jc.WarmupDelay.Duration != 0 {
		cfg.WarmupDelay = jc.WarmupDelay.Duration
	}
	if jc.AutoSync != nil {
		cfg.AutoSync = *jc.AutoSync
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
