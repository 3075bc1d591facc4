package config

import "time"

// Config holds runtime settings for the MediaBox CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP API.
//   - SessionPath: SQLite file keeping the access token between runs.
//   - Timeout: per-request HTTP timeout.
type Config struct {
	ServerURL   string
	SessionPath string
	Timeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SessionPath = "mediabox-session.db"
	c.Timeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file named in args (if any).
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	return cfg
}
