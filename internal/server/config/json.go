package config

import (
	"github.com/dmitrijs2005/posync/internal/flagx"
	"github.com/dmitrijs2005/posync/internal/timex"
)

// JsonConfig is the on-disk shape of the backend config. Durations accept
// "24h" as well as integer nanoseconds. Zero values leave Config untouched.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	GRPCHealthAddr    string         `json:"grpc_health_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	RemoteEnabled     *bool          `json:"remote_enabled"`
	LocalDatabasePath string         `json:"local_database_path"`
	SecretKey         string         `json:"secret_key"`
	TokenValidity     timex.Duration `json:"token_validity"`
	AdminPassword     string         `json:"admin_password"`
	LogFormat         string         `json:"log_format"`
	LogLevel          string         `json:"log_level"`
}

// parseJson overlays config with the file named by -c / -config.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}
	if err := flagx.ReadJSON(jsonConfigFile, c); err != nil {
		panic(err)
	}

	if c.HTTPAddr != "" {
		config.HTTPAddr = c.HTTPAddr
	}
	if c.GRPCHealthAddr != "" {
		config.GRPCHealthAddr = c.GRPCHealthAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RemoteEnabled != nil {
		config.RemoteEnabled = *c.RemoteEnabled
	}
	if c.LocalDatabasePath != "" {
		config.LocalDatabasePath = c.LocalDatabasePath
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidity.Duration != 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.AdminPassword != "" {
		config.AdminPassword = c.AdminPassword
	}
	if c.LogFormat != "" {
		config.LogFormat = c.LogFormat
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
