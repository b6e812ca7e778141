// Package config assembles the runtime configuration of the Zuno CLI.
//
// Sources are layered, later ones winning: built-in defaults, an optional
// JSON file (-c/-config), ZUNO_* environment variables, then command-line
// flags.
package config

import "time"

// Config holds runtime settings for the Zuno client.
type Config struct {
	// APIBaseURL is the REST endpoint of the backend.
	APIBaseURL string `env:"ZUNO_API_URL"`

	// WSURL is the push channel endpoint.
	WSURL string `env:"ZUNO_WS_URL"`

	// RPID is the fallback WebAuthn relying-party id, used when the
	// server's options payload omits one.
	RPID string `env:"ZUNO_RP_ID"`

	// DataDir is where the mirror database, vault, and device keys live.
	// Empty means the per-user application data directory.
	DataDir string `env:"ZUNO_DATA_DIR"`

	// PollInterval is the fallback refresh cadence while the push channel
	// is down.
	PollInterval time.Duration `env:"ZUNO_POLL_INTERVAL"`

	// CacheTTL is how long cached server payloads stay fresh.
	CacheTTL time.Duration `env:"ZUNO_CACHE_TTL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://api.zuno.app"
	c.WSURL = "wss://api.zuno.app/ws"
	c.RPID = "zuno.app"
	c.DataDir = ""
	c.PollInterval = 15 * time.Second
	c.CacheTTL = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
