package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all service configuration. It is built once in main and
// passed down; nothing reads the environment after startup.
type Config struct {
	MySQLDSN string `env:"MYSQL_DSN,required"`
	RedisURL string `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379/0"`
	Port     string `env:"PORT" envDefault:"8080"`

	ListingURL string `env:"MA_LEGISLATURE_EVENTS_URL" envDefault:"https://malegislature.gov/Events"`
	APIBaseURL string `env:"MA_LEGISLATURE_API_URL" envDefault:"https://malegislature.gov/api"`
	UserAgent  string `env:"SYNC_USER_AGENT" envDefault:"Community-Clarity-AI/1.0 (Civic Engagement Platform)"`

	SyncInterval   time.Duration `env:"SYNC_INTERVAL" envDefault:"30m"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	OnDemandLimit  int           `env:"ON_DEMAND_LIMIT" envDefault:"10"`
	WorkerCount    int           `env:"SYNC_WORKERS" envDefault:"3"`
	UpstreamRPS    float64       `env:"UPSTREAM_RPS" envDefault:"2"`
	StatusTTL      time.Duration `env:"STATUS_TTL" envDefault:"1h"`
	RunLockTTL     time.Duration `env:"RUN_LOCK_TTL" envDefault:"15m"`
}

// Load reads configuration from environment variables, with .env loaded
// best-effort for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
