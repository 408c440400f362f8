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
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-seed       create demo accounts (use -seed=false to disable)
//	-l string   log level
//	-f string   log format (text or json)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-seed", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	ttl := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.BoolVar(&config.Seed, "seed", config.Seed, "create demo accounts")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if flagx.Visited(fs, "t") {
		config.TokenTTL = time.Duration(*ttl) * time.Minute
	}
}
