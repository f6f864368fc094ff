package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophaccounts/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling.
// Intervals accept strings like "3s" or integer nanoseconds.
type JSONConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	SessionDBPath       string         `json:"session_db_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJSON overlays cfg with the non-empty values of the JSON file at path.
// An empty path is a no-op.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}
