package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
api:
  rest_base_url: "https://fapi.binance.com"
  ws_base_url: "wss://fstream.binance.com"
symbols:
  - symbol: "BTCUSDT"
    maintain_book: true
streaming:
  depth_update_speed_millis: 100
rate_limit:
  requests_per_window: 1200
  window: 1m
logging:
  level: "info"
  format: "json"
`

func writeSampleConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesSampleConfig(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeSampleConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.RESTBaseURL != "https://fapi.binance.com" {
		t.Errorf("RESTBaseURL = %q", cfg.API.RESTBaseURL)
	}
	if len(cfg.Symbols) != 1 || cfg.Symbols[0].Symbol != "BTCUSDT" {
		t.Errorf("Symbols = %+v", cfg.Symbols)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	t.Setenv("BINANCE_KEY", "env-key")
	t.Setenv("BINANCE_SECRET", "env-secret")

	cfg, err := Load(writeSampleConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Key != "env-key" || cfg.API.Secret != "env-secret" {
		t.Errorf("API = %+v, want env-provided credentials", cfg.API)
	}
}

func TestValidateRejectsMissingSymbols(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		API:       APIConfig{RESTBaseURL: "https://fapi.binance.com", WSBaseURL: "wss://fstream.binance.com"},
		RateLimit: RateLimitConfig{RequestsPerWindow: 10, Window: 1},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate to reject a config with no symbols")
	}
}

func TestValidateRejectsBadDepthSpeed(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeSampleConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Streaming.DepthUpdateSpeedMillis = 50
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate to reject an unsupported depth update speed")
	}
}
