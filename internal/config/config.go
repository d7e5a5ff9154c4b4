// Package config defines the top-level configuration for the monitor
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from
// a TOML file and then optionally overridden by HYPERWATCH_* environment
// variables. The value is immutable after Load; components receive it by
// value at construction time.
type Config struct {
	Hyperliquid HyperliquidConfig `toml:"hyperliquid"`
	Telegram    TelegramConfig    `toml:"telegram"`
	Monitor     MonitorConfig     `toml:"monitor"`
	Log         LogConfig         `toml:"log"`
}

// HyperliquidConfig holds the info-API endpoint and account identity.
type HyperliquidConfig struct {
	APIURL         string   `toml:"api_url"`
	WalletAddress  string   `toml:"wallet_address"`
	RequestTimeout duration `toml:"request_timeout"`
	MaxRetries     int      `toml:"max_retries"`
	RetryBaseDelay duration `toml:"retry_base_delay"`
}

// TelegramConfig holds bot credentials and the target chat.
type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// MonitorConfig holds the refresh schedule and cache behavior.
type MonitorConfig struct {
	RefreshInterval duration `toml:"refresh_interval"`
	PriceSymbols    []string `toml:"price_symbols"`
	CacheTTL        duration `toml:"cache_ttl"`
	StaleFallback   bool     `toml:"stale_fallback"`
	MaxStale        duration `toml:"max_stale"`
}

// LogConfig holds log level and optional rotating-file output.
type LogConfig struct {
	Level      string `toml:"level"`
	Dir        string `toml:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder
// can parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Hyperliquid: HyperliquidConfig{
			APIURL:         "https://api.hyperliquid.xyz/info",
			RequestTimeout: duration{30 * time.Second},
			MaxRetries:     3,
			RetryBaseDelay: duration{500 * time.Millisecond},
		},
		Monitor: MonitorConfig{
			RefreshInterval: duration{5 * time.Minute},
			PriceSymbols:    []string{"BTC", "ETH", "SOL"},
			CacheTTL:        duration{30 * time.Second},
			StaleFallback:   false,
			MaxStale:        duration{5 * time.Minute},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 5,
		},
	}
}

// validLogLevels enumerates the accepted values for Log.Level.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// placeholders are sample values from config.example.toml that must be
// replaced before the monitor will start.
var placeholders = map[string]bool{
	"your-wallet-address":  true,
	"your-bot-token":       true,
	"your-chat-id":         true,
	"changeme":             true,
	"0x0000000000000000000000000000000000000000": true,
}

func isPlaceholder(v string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(v))]
}

// Validate checks Config for missing, placeholder, or out-of-range
// values and returns a combined error describing every problem found.
// Any error here is fatal at startup.
func (c *Config) Validate() error {
	var errs []string

	if c.Hyperliquid.APIURL == "" {
		errs = append(errs, "hyperliquid: api_url must not be empty")
	}
	if c.Hyperliquid.WalletAddress == "" || isPlaceholder(c.Hyperliquid.WalletAddress) {
		errs = append(errs, "hyperliquid: wallet_address must be set to a real address")
	}
	if c.Hyperliquid.RequestTimeout.Duration <= 0 {
		errs = append(errs, "hyperliquid: request_timeout must be positive")
	}
	if c.Hyperliquid.MaxRetries < 1 {
		errs = append(errs, "hyperliquid: max_retries must be >= 1")
	}

	if c.Telegram.BotToken == "" || isPlaceholder(c.Telegram.BotToken) {
		errs = append(errs, "telegram: bot_token must be set to a real token")
	}
	if c.Telegram.ChatID == "" || isPlaceholder(c.Telegram.ChatID) {
		errs = append(errs, "telegram: chat_id must be set to a real chat id")
	}

	if c.Monitor.RefreshInterval.Duration <= 0 {
		errs = append(errs, "monitor: refresh_interval must be positive")
	}
	if len(c.Monitor.PriceSymbols) == 0 {
		errs = append(errs, "monitor: price_symbols must list at least one symbol")
	}
	if c.Monitor.CacheTTL.Duration <= 0 {
		errs = append(errs, "monitor: cache_ttl must be positive")
	}
	if c.Monitor.StaleFallback && c.Monitor.MaxStale.Duration <= 0 {
		errs = append(errs, "monitor: max_stale must be positive when stale_fallback is enabled")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log: unknown level %q (valid: debug, info, warn, error)", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
