package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mediabox/internal/flagx"
	"github.com/dmitrijs2005/mediabox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL   string         `json:"server_url"`
	SessionPath string         `json:"session_path"`
	Timeout     timex.Duration `json:"timeout"`
}

// parseJson overlays Config with the file named by -c/-config, if any.
// Keys that are missing or zero keep their current value. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.JsonConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.SessionPath != "" {
		cfg.SessionPath = jc.SessionPath
	}
	if jc.Timeout.Duration != 0 {
		cfg.Timeout = jc.Timeout.Duration
	}
}
