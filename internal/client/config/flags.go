package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/scholarhub/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST API base URL
//	-t int      request timeout, seconds
//	-d string   session database directory
//	-s          strict restore
//	-l string   log level
//	-f string   log format (text or json)
//
// Other flags are ignored; malformed values and a timeout below one second
// panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-s", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the REST API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "session database directory")
	fs.BoolVar(&cfg.StrictRestore, "s", cfg.StrictRestore, "verify a stored session before trusting it")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text or json)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// a JSON timeout below one second must survive when -t is absent
	if flagx.Visited(fs, "t") {
		cfg.RequestTimeout = mustPositiveTimeout("-t", time.Duration(*timeout)*time.Second)
	}
}
