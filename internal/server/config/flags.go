package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/posync/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":8080")
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-r bool     remote store enabled (use -r=false to disable)
//	-l string   local SQLite path
//	-s string   token HMAC secret key
//	-t int      token validity, minutes
//	-f string   log format: text, json or zap
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-r", "-l", "-s", "-t", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "remote database DSN")
	fs.BoolVar(&config.RemoteEnabled, "r", config.RemoteEnabled, "remote store enabled")
	fs.StringVar(&config.LocalDatabasePath, "l", config.LocalDatabasePath, "local database path")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidity.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (text|json|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Minute
}
