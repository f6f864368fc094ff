package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/flagx"
)

// Config holds runtime settings for the accounts CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - SessionDBPath: sqlite file caching the signed-in session.
//   - OnlineCheckInterval: how often the client probes server health.
type Config struct {
	ServerEndpointAddr  string
	SessionDBPath       string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionDBPath = "session.db"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON file (if -c/-config is given) and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, flagx.ConfigFileFlag(args)); err != nil {
		panic(err)
	}
	parseFlags(cfg, args)
	return cfg
}
