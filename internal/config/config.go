package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP API + WebSocket fanout
	HTTPHost string
	HTTPPort int

	// Roster/config key-value store. Driver is "sqlite" or "postgres".
	StoreDriver string
	StoreDSN    string

	// Optional sport presets file; the embedded presets are used when empty.
	PresetsPath string

	// Redis relay, disabled when RedisAddr is empty.
	RedisAddr          string
	RedisChannelPrefix string

	// Period and match results posted to a Discord channel; off when empty.
	DiscordWebhookURL string

	// Per-session command limiter.
	CommandRatePerSec float64
	CommandBurst      int

	// Terminal display client.
	DisplayAddr    string
	DisplaySession string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPHost: envStr("HTTP_HOST", "0.0.0.0"),
		HTTPPort: envInt("HTTP_PORT", 8780),

		StoreDriver: strings.ToLower(envStr("STORE_DRIVER", "sqlite")),
		StoreDSN:    envStr("STORE_DSN", "data/courtside.db"),

		PresetsPath: envStr("PRESETS_PATH", ""),

		RedisAddr:          envStr("REDIS_ADDR", ""),
		RedisChannelPrefix: envStr("REDIS_CHANNEL_PREFIX", "courtside"),

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		// A scorer tapping buttons never gets near this; it stops scripted floods.
		CommandRatePerSec: envFloat("COMMAND_RATE_PER_SEC", 20),
		CommandBurst:      envInt("COMMAND_BURST", 40),

		DisplayAddr:    envStr("DISPLAY_ADDR", "localhost:8780"),
		DisplaySession: envStr("DISPLAY_SESSION", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
