package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/zuno-wallet/zuno-go/internal/flagx"
	"github.com/zuno-wallet/zuno-go/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given as strings like "15s" or as integer nanoseconds; timex.Duration
// handles both.
type JsonConfig struct {
	APIBaseURL   string         `json:"api_base_url"`
	WSURL        string         `json:"ws_url"`
	RPID         string         `json:"rp_id"`
	DataDir      string         `json:"data_dir"`
	PollInterval timex.Duration `json:"poll_interval"`
	CacheTTL     timex.Duration `json:"cache_ttl"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// No flag means no JSON layer. Only fields present in the file override;
// absent fields keep their earlier value.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.WSURL != "" {
		cfg.WSURL = jc.WSURL
	}
	if jc.RPID != "" {
		cfg.RPID = jc.RPID
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.CacheTTL.Duration != 0 {
		cfg.CacheTTL = time.Duration(jc.CacheTTL.Duration)
	}
}
