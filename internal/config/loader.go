package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies HYPERWATCH_* environment variable
// overrides, and returns the final Config. The returned Config has NOT
// been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known HYPERWATCH_* environment variables
// and overwrites the corresponding Config fields when a variable is set
// (i.e. not empty). This lets operators inject secrets at deploy time
// without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Hyperliquid.APIURL, "HYPERWATCH_API_URL")
	setStr(&cfg.Hyperliquid.WalletAddress, "HYPERWATCH_WALLET_ADDRESS")
	setDuration(&cfg.Hyperliquid.RequestTimeout, "HYPERWATCH_REQUEST_TIMEOUT")
	setInt(&cfg.Hyperliquid.MaxRetries, "HYPERWATCH_MAX_RETRIES")
	setDuration(&cfg.Hyperliquid.RetryBaseDelay, "HYPERWATCH_RETRY_BASE_DELAY")

	setStr(&cfg.Telegram.BotToken, "HYPERWATCH_TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Telegram.ChatID, "HYPERWATCH_TELEGRAM_CHAT_ID")

	setDuration(&cfg.Monitor.RefreshInterval, "HYPERWATCH_REFRESH_INTERVAL")
	setStringSlice(&cfg.Monitor.PriceSymbols, "HYPERWATCH_PRICE_SYMBOLS")
	setDuration(&cfg.Monitor.CacheTTL, "HYPERWATCH_CACHE_TTL")
	setBool(&cfg.Monitor.StaleFallback, "HYPERWATCH_STALE_FALLBACK")
	setDuration(&cfg.Monitor.MaxStale, "HYPERWATCH_MAX_STALE")

	setStr(&cfg.Log.Level, "HYPERWATCH_LOG_LEVEL")
	setStr(&cfg.Log.Dir, "HYPERWATCH_LOG_DIR")
	setInt(&cfg.Log.MaxSizeMB, "HYPERWATCH_LOG_MAX_SIZE_MB")
	setInt(&cfg.Log.MaxBackups, "HYPERWATCH_LOG_MAX_BACKUPS")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
