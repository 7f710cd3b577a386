package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for stock-query.
type Config struct {
	Watchlist Watchlist `yaml:"watchlist"`
	Feed      Feed      `yaml:"feed"`
	Alpaca    Alpaca    `yaml:"alpaca"`
	Refresh   Refresh   `yaml:"refresh"`
	Logging   Logging   `yaml:"logging"`
	QuoteLog  QuoteLog  `yaml:"quote_log"`
}

// Watchlist locates the persisted list of tracked codes.
type Watchlist struct {
	Path string `yaml:"path"`
}

// Feed selects and tunes the quote provider.
type Feed struct {
	Provider  string        `yaml:"provider"` // "netease" or "alpaca"
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	Charset   string        `yaml:"charset"`    // "utf-8" or "gbk"
	BatchSize int           `yaml:"batch_size"` // codes per request, 0 = unbatched
}

// Alpaca holds credentials for the alpaca provider.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
	Feed      string `yaml:"feed"`
}

// Refresh controls the tick cadence of the dashboard.
type Refresh struct {
	Tick       time.Duration `yaml:"tick"`
	EveryTicks int           `yaml:"every_ticks"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// QuoteLog configures the optional SQLite log of fetched quotes. An empty
// path disables it.
type QuoteLog struct {
	Path string `yaml:"path"`
}

// Provider names accepted in feed.provider.
const (
	ProviderNetEase = "netease"
	ProviderAlpaca  = "alpaca"
)

// DefaultFeedURL is the NetEase quote endpoint; codes are appended to it.
const DefaultFeedURL = "http://api.money.126.net/data/feed/"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Watchlist: Watchlist{Path: "~/.stocks.json"},
		Feed: Feed{
			Provider: ProviderNetEase,
			URL:      DefaultFeedURL,
			Timeout:  10 * time.Second,
			Charset:  "utf-8",
		},
		Refresh: Refresh{
			Tick:       time.Second,
			EveryTicks: 60,
		},
		Logging: Logging{
			Level: "info",
			File:  fmt.Sprintf("/tmp/stock-query-%s.log", time.Now().Format("2006-01-02")),
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path on top of the
// defaults, applies environment variable overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional behaves like Load but falls back to the defaults (plus
// environment overrides) when the file does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		applyEnvOverrides(cfg)
		return cfg, cfg.validate()
	}
	return cfg, err
}

// DefaultPath returns ~/.config/stock-query/config.yaml, or
// $STOCK_QUERY_CONFIG when set.
func DefaultPath() string {
	if p := os.Getenv("STOCK_QUERY_CONFIG"); p != "" {
		return p
	}
	return ExpandHome("~/.config/stock-query/config.yaml")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOCK_QUERY_WATCHLIST"); v != "" {
		cfg.Watchlist.Path = v
	}

	if v := os.Getenv("STOCK_QUERY_PROVIDER"); v != "" {
		cfg.Feed.Provider = v
	}
	if v := os.Getenv("STOCK_QUERY_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STOCK_QUERY_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}

	if v := os.Getenv("QUOTE_LOG_PATH"); v != "" {
		cfg.QuoteLog.Path = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}

	// The SDK-standard Alpaca names take precedence.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

func (c *Config) validate() error {
	switch c.Feed.Provider {
	case ProviderNetEase, ProviderAlpaca:
	default:
		return fmt.Errorf("unknown feed provider %q", c.Feed.Provider)
	}
	switch strings.ToLower(c.Feed.Charset) {
	case "", "utf-8", "utf8", "gbk":
	default:
		return fmt.Errorf("unsupported feed charset %q", c.Feed.Charset)
	}
	if c.Feed.BatchSize < 0 {
		return fmt.Errorf("feed.batch_size must not be negative, got %d", c.Feed.BatchSize)
	}
	if c.Refresh.Tick <= 0 {
		c.Refresh.Tick = time.Second
	}
	if c.Refresh.EveryTicks <= 0 {
		c.Refresh.EveryTicks = 60
	}
	return nil
}
