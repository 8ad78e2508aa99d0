// Package config loads runtime configuration for the posync agent.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Intervals use timex.Duration, so "5s" and integer nanoseconds both work:
//
//	{
//	  "backend_url": "http://localhost:8080",
//	  "probe_interval": "5s",
//	  "settle_delay": "1s",
//	  "backend_command": "posync-server -a :8080",
//	  "auto_sync": true
//	}
//
// Environment variables are not read.
package config
