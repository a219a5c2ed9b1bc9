package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Database   DatabaseConfig   `envPrefix:"DB_"`
	JWT        JWTConfig        `envPrefix:"JWT_"`
	Storage    StorageConfig    `envPrefix:"STORAGE_"`
	Cloudinary CloudinaryConfig `envPrefix:"CLOUDINARY_"`
	S3         S3Config         `envPrefix:"S3_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	RateLimit  RateLimitConfig  `envPrefix:"RATE_LIMIT_"`
	Earning    EarningConfig    `envPrefix:"EARNING_"`
	Seed       SeedConfig       `envPrefix:"SEED_"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8099"`
	Env          string        `env:"ENV" envDefault:"development"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

func (s ServerConfig) IsProduction() bool { return s.Env == "production" }

type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"mysql"` // mysql | postgres | sqlite
	DSN             string        `env:"DSN" envDefault:"earnly:earnly@tcp(localhost:3306)/earnly?charset=utf8mb4&parseTime=True&loc=UTC"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"ACCESS_SECRET" envDefault:"change-me-in-production"`
	RefreshSecret string        `env:"REFRESH_SECRET" envDefault:"change-me-refresh"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"168h"`
	Issuer        string        `env:"ISSUER" envDefault:"earnly"`
}

// StorageConfig selects where proof files go.
type StorageConfig struct {
	Driver string `env:"DRIVER" envDefault:"cloudinary"` // cloudinary | s3
	Folder string `env:"FOLDER" envDefault:"earnly/proofs"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
}

type S3Config struct {
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION" envDefault:"ap-south-1"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	PublicURL string `env:"PUBLIC_URL"` // optional CDN base; defaults to the bucket URL
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"earnly"`
}

type RateLimitConfig struct {
	Backend string        `env:"BACKEND" envDefault:"memory"` // memory | redis
	Limit   int           `env:"LIMIT" envDefault:"100"`
	Window  time.Duration `env:"WINDOW" envDefault:"60s"`
}

// EarningConfig holds the engine defaults; admin settings override the
// withdrawal bounds at runtime.
type EarningConfig struct {
	Currency           string `env:"CURRENCY" envDefault:"PKR"`
	MinWithdrawalCents int64  `env:"MIN_WITHDRAWAL_CENTS" envDefault:"50000"`
	MaxWithdrawalCents int64  `env:"MAX_WITHDRAWAL_CENTS" envDefault:"5000000"`
	QuotaTimezone      string `env:"QUOTA_TIMEZONE" envDefault:"Asia/Karachi"`
	MaxLedgerAttempts  int    `env:"MAX_LEDGER_ATTEMPTS" envDefault:"3"`
}

func (e EarningConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(e.QuotaTimezone)
	if err != nil {
		return nil, fmt.Errorf("quota timezone %q: %w", e.QuotaTimezone, err)
	}
	return loc, nil
}

type SeedConfig struct {
	PlansFile     string `env:"PLANS_FILE" envDefault:"config/plans.yaml"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@earnly.local"`
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Earning.MaxLedgerAttempts < 1 {
		cfg.Earning.MaxLedgerAttempts = 1
	}
	return cfg, nil
}
