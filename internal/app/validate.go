package app

import (
	"fmt"
	"os"
	"strings"

	"minichat/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	// data dir must be present
	if p := eff.DataDir; p == "" {
		return fmt.Errorf("data directory is empty: set --data flag, MINICHAT_DATA_DIR env, or storage.data_dir in config")
	}

	// storage backend must be known
	switch strings.ToLower(strings.TrimSpace(eff.Config.Storage.Backend)) {
	case "", "file", "pebble":
	default:
		return fmt.Errorf("unknown storage backend %q: use \"file\" or \"pebble\"", eff.Config.Storage.Backend)
	}

	// TLS cert/key presence check if one is set
	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	// cleanup cron validity is checked by the scheduler itself; here only
	// catch an obviously broken min_age
	if d := eff.Config.Cleanup.MinAge.Duration(); d < 0 {
		return fmt.Errorf("cleanup.min_age must not be negative")
	}

	return nil
}
