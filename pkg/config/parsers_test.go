package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadParsesWrappers(t *testing.T) {
	p := writeConfig(t, `
server:
  address: 127.0.0.1
  port: 4000
storage:
  backend: pebble
  data_dir: /var/lib/minichat
uploads:
  max_bytes: 16MB
cleanup:
  enabled: true
  min_age: 36h
telemetry:
  slow_requests: 250ms
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:4000" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if cfg.Storage.Backend != "pebble" {
		t.Fatalf("unexpected backend %q", cfg.Storage.Backend)
	}
	if cfg.Uploads.MaxBytes.Int64() != 16_000_000 {
		t.Fatalf("unexpected max_bytes %d", cfg.Uploads.MaxBytes.Int64())
	}
	if cfg.Cleanup.MinAge.Duration() != 36*time.Hour {
		t.Fatalf("unexpected min_age %v", cfg.Cleanup.MinAge.Duration())
	}
	if cfg.Telemetry.SlowRequests.Duration() != 250*time.Millisecond {
		t.Fatalf("unexpected slow_requests %v", cfg.Telemetry.SlowRequests.Duration())
	}
}

func TestAddrDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.Addr() != "0.0.0.0:3001" {
		t.Fatalf("unexpected default addr %q", cfg.Addr())
	}
}

func TestEffectiveConfigExplicitConfigFlag(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Server.Port = 4000
	fileCfg.Storage.DataDir = "/data"

	flags := Flags{Config: "custom.yaml", Set: map[string]bool{"config": true}}
	res, err := LoadEffectiveConfig(flags, fileCfg, true, &Config{}, EnvResult{})
	if err != nil {
		t.Fatalf("effective config: %v", err)
	}
	if res.Source != "config" {
		t.Fatalf("expected source config, got %s", res.Source)
	}
	if res.Addr != "0.0.0.0:4000" || res.DataDir != "/data" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEffectiveConfigExplicitConfigFlagMissingFile(t *testing.T) {
	flags := Flags{Config: "missing.yaml", Set: map[string]bool{"config": true}}
	if _, err := LoadEffectiveConfig(flags, &Config{}, false, &Config{}, EnvResult{}); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestEffectiveConfigFlagsWin(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Server.Port = 9999
	fileCfg.Storage.DataDir = "/from-file"

	flags := Flags{
		Addr: "127.0.0.1:3001",
		Data: "/from-flags",
		Set:  map[string]bool{"addr": true, "data": true},
	}
	res, err := LoadEffectiveConfig(flags, fileCfg, true, &Config{}, EnvResult{})
	if err != nil {
		t.Fatalf("effective config: %v", err)
	}
	if res.Source != "flags" {
		t.Fatalf("expected source flags, got %s", res.Source)
	}
	if res.Addr != "127.0.0.1:3001" || res.DataDir != "/from-flags" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEffectiveConfigFileBeatsEnv(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Storage.DataDir = "/from-file"
	envCfg := &Config{}
	envCfg.Storage.DataDir = "/from-env"

	res, err := LoadEffectiveConfig(Flags{Set: map[string]bool{}}, fileCfg, true, envCfg, EnvResult{EnvUsed: true})
	if err != nil {
		t.Fatalf("effective config: %v", err)
	}
	if res.Source != "config" || res.DataDir != "/from-file" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEffectiveConfigEnvFallback(t *testing.T) {
	envCfg := &Config{}
	envCfg.Server.Port = 4040
	envCfg.Storage.DataDir = "/from-env"

	res, err := LoadEffectiveConfig(Flags{Set: map[string]bool{}}, &Config{}, false, envCfg, EnvResult{EnvUsed: true})
	if err != nil {
		t.Fatalf("effective config: %v", err)
	}
	if res.Source != "env" || res.Addr != "0.0.0.0:4040" || res.DataDir != "/from-env" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestParseConfigEnvs(t *testing.T) {
	t.Setenv("MINICHAT_ADDR", "10.0.0.1:8080")
	t.Setenv("MINICHAT_STORAGE_BACKEND", "Pebble")
	t.Setenv("MINICHAT_CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("MINICHAT_UPLOADS_MAX_BYTES", "1048576")

	envCfg, res := ParseConfigEnvs()
	if !res.EnvUsed {
		t.Fatalf("expected EnvUsed")
	}
	if envCfg.Server.Address != "10.0.0.1" || envCfg.Server.Port != 8080 {
		t.Fatalf("unexpected server config %+v", envCfg.Server)
	}
	if envCfg.Storage.Backend != "pebble" {
		t.Fatalf("expected lowercased backend, got %q", envCfg.Storage.Backend)
	}
	if len(envCfg.Security.CORS.AllowedOrigins) != 2 || envCfg.Security.CORS.AllowedOrigins[1] != "http://b.example" {
		t.Fatalf("unexpected origins %v", envCfg.Security.CORS.AllowedOrigins)
	}
	if envCfg.Uploads.MaxBytes.Int64() != 1<<20 {
		t.Fatalf("unexpected max bytes %d", envCfg.Uploads.MaxBytes.Int64())
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("MINICHAT_CONFIG", "/env/config.yaml")
	if p := ResolveConfigPath("./config.yaml", false); p != "/env/config.yaml" {
		t.Fatalf("expected env path, got %q", p)
	}
	if p := ResolveConfigPath("/flag/config.yaml", true); p != "/flag/config.yaml" {
		t.Fatalf("expected flag path, got %q", p)
	}
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("MINICHAT_SERVER_URL", "http://example.test:3001")
	t.Setenv("MINICHAT_POLL_INTERVAL", "2s")
	cfg := LoadClientConfig()
	if cfg.ServerURL != "http://example.test:3001" {
		t.Fatalf("unexpected server url %q", cfg.ServerURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.PollInterval)
	}
}
