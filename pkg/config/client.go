package config

import (
	"os"
	"strings"
	"time"
)

// ClientConfig holds the settings the terminal client needs.
type ClientConfig struct {
	ServerURL    string
	PollInterval time.Duration
}

// LoadClientConfig resolves the client settings from the environment with
// sensible defaults for a locally running server.
func LoadClientConfig() ClientConfig {
	cc := ClientConfig{
		ServerURL:    "http://localhost:3001",
		PollInterval: 5 * time.Second,
	}
	if v := strings.TrimSpace(os.Getenv("MINICHAT_SERVER_URL")); v != "" {
		cc.ServerURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("MINICHAT_POLL_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cc.PollInterval = d
		}
	}
	return cc
}
