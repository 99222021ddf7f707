package config

import (
	"flag"
	"os"
	"time"

	"github.com/dsmatveev/plaza/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the hosted backend
//	-k string   backend anon key
//	-d string   path to the local state database
//	-t int      request timeout in seconds
//
// os.Args is filtered to the flags handled here (flagx.FilterArgs) so this
// parser does not trip over flags owned by other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "base URL of the hosted backend")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "backend anon key")
	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "path to the local state database")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
