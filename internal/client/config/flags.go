package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/posync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-u string   backend base URL
//	-p int      backend port reported when the health check answers
//	-i int      probe interval (seconds)
//	-t int      probe timeout (seconds)
//	-d string   agent database path
//	-s string   token signing secret shared with the backend
//	-b string   backend command line; enables native supervision
//	-g string   backend gRPC health address
//	-l string   log format: text, json or zap
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-p", "-i", "-t", "-d", "-s", "-b", "-g", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "u", cfg.BackendURL, "backend base URL")
	fs.IntVar(&cfg.BackendPort, "p", cfg.BackendPort, "backend port")
	interval := fs.Int("i", int(cfg.ProbeInterval.Seconds()), "probe interval (in seconds)")
	timeout := fs.Int("t", int(cfg.ProbeTimeout.Seconds()), "probe timeout (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "agent database path")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "token secret key")
	fs.StringVar(&cfg.BackendCommand, "b", cfg.BackendCommand, "backend command (native mode)")
	fs.StringVar(&cfg.GRPCHealthAddr, "g", cfg.GRPCHealthAddr, "backend gRPC health address")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text|json|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ProbeInterval = time.Duration(*interval) * time.Second
	cfg.ProbeTimeout = time.Duration(*timeout) * time.Second
}
