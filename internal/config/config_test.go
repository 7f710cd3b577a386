package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable applyEnvOverrides reads for the duration of
// the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STOCK_QUERY_WATCHLIST", "STOCK_QUERY_PROVIDER", "STOCK_QUERY_FEED_URL",
		"LOG_LEVEL", "STOCK_QUERY_LOG_FILE", "QUOTE_LOG_PATH",
		"ALPACA_API_KEY", "ALPACA_API_SECRET", "APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
watchlist:
  path: "/tmp/stocks.json"
feed:
  provider: "alpaca"
  url: "http://localhost:9999/feed/"
  timeout: 3s
  charset: "gbk"
  batch_size: 50
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  feed: "iex"
refresh:
  tick: 500ms
  every_ticks: 30
logging:
  level: "debug"
  file: "/tmp/sq.log"
quote_log:
  path: "/tmp/quotes.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Watchlist.Path != "/tmp/stocks.json" {
		t.Errorf("Watchlist.Path = %q, want %q", cfg.Watchlist.Path, "/tmp/stocks.json")
	}
	if cfg.Feed.Provider != ProviderAlpaca {
		t.Errorf("Feed.Provider = %q, want %q", cfg.Feed.Provider, ProviderAlpaca)
	}
	if cfg.Feed.Timeout != 3*time.Second {
		t.Errorf("Feed.Timeout = %v, want %v", cfg.Feed.Timeout, 3*time.Second)
	}
	if cfg.Feed.Charset != "gbk" {
		t.Errorf("Feed.Charset = %q, want %q", cfg.Feed.Charset, "gbk")
	}
	if cfg.Feed.BatchSize != 50 {
		t.Errorf("Feed.BatchSize = %d, want %d", cfg.Feed.BatchSize, 50)
	}
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}
	if cfg.Refresh.Tick != 500*time.Millisecond {
		t.Errorf("Refresh.Tick = %v, want %v", cfg.Refresh.Tick, 500*time.Millisecond)
	}
	if cfg.Refresh.EveryTicks != 30 {
		t.Errorf("Refresh.EveryTicks = %d, want %d", cfg.Refresh.EveryTicks, 30)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.QuoteLog.Path != "/tmp/quotes.db" {
		t.Errorf("QuoteLog.Path = %q, want %q", cfg.QuoteLog.Path, "/tmp/quotes.db")
	}
}

func TestLoadKeepsDefaultsForMissingSections(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
logging:
  level: "warn"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Feed.URL != DefaultFeedURL {
		t.Errorf("Feed.URL = %q, want %q", cfg.Feed.URL, DefaultFeedURL)
	}
	if cfg.Feed.Provider != ProviderNetEase {
		t.Errorf("Feed.Provider = %q, want %q", cfg.Feed.Provider, ProviderNetEase)
	}
	if cfg.Refresh.EveryTicks != 60 {
		t.Errorf("Refresh.EveryTicks = %d, want %d", cfg.Refresh.EveryTicks, 60)
	}
	if cfg.Refresh.Tick != time.Second {
		t.Errorf("Refresh.Tick = %v, want %v", cfg.Refresh.Tick, time.Second)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
watchlist:
  path: "/original/stocks.json"
`)

	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("STOCK_QUERY_WATCHLIST", "/env/stocks.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Watchlist.Path != "/env/stocks.json" {
		t.Errorf("Watchlist.Path = %q, want %q (env override)", cfg.Watchlist.Path, "/env/stocks.json")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
feed:
  provider: "bloomberg"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should reject an unknown provider")
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOptional() returned error: %v", err)
	}
	if cfg.Watchlist.Path != "~/.stocks.json" {
		t.Errorf("Watchlist.Path = %q, want %q", cfg.Watchlist.Path, "~/.stocks.json")
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "error")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if got := ExpandHome("~/.stocks.json"); got != filepath.Join(home, ".stocks.json") {
		t.Errorf("ExpandHome(~/.stocks.json) = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome(/abs/path) = %q, want unchanged", got)
	}
	if got := ExpandHome("~user/x"); strings.HasPrefix(got, home) {
		t.Errorf("ExpandHome(~user/x) = %q, want unchanged", got)
	}
}
