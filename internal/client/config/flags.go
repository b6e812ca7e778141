package config

import (
	"flag"
	"os"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend API
//	-w string   WebSocket push endpoint
//	-d string   data directory
//	-i int      fallback poll interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.WSURL, "w", cfg.WSURL, "WebSocket push endpoint")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "fallback poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
