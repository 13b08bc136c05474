package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Tracker  TrackerConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tracking_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type TelegramConfig struct {
	Token  string `env:"TELEGRAM_TOKEN"`
	ChatID int64  `env:"CHANNEL_ID"`
}

type TrackerConfig struct {
	// PollInterval is how often the scheduled batch refresh fires.
	PollInterval time.Duration `env:"POLL_INTERVAL,    default=10m"`
	// AdapterTimeout bounds a single courier source call.
	AdapterTimeout time.Duration `env:"ADAPTER_TIMEOUT,  default=120s"`
	// ResultCacheTTL is how long a courier result is reused before repolling.
	ResultCacheTTL time.Duration `env:"RESULT_CACHE_TTL, default=60s"`
	// ChromeBin optionally points at the Chromium binary for the browser
	// fallback adapter; empty means whatever chromedp finds on PATH.
	ChromeBin string `env:"CHROME_BIN"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
