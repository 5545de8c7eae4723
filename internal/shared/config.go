package shared

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"propsite/internal/domain"
)

const (
	DriverFile  = "file"
	DriverMySQL = "mysql"
)

type Config struct {
	AppEnv          string  `env:"APP_ENV" envDefault:"prod"`
	LogLevel        string  `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr        string  `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr     string  `env:"METRICS_ADDR"`
	StorageDriver   string  `env:"STORAGE_DRIVER" envDefault:"file"`
	DataDir         string  `env:"DATA_DIR" envDefault:"./data"`
	MySQLDSN        string  `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/propsite?parseTime=true&charset=utf8mb4,utf8&loc=UTC"`
	RedisAddr       string  `env:"REDIS_ADDR"`
	RedisPass       string  `env:"REDIS_PASSWORD"`
	RedisDB         int     `env:"REDIS_DB" envDefault:"0"`
	CachePrefix     string  `env:"CACHE_PREFIX" envDefault:"propsite:"`
	CacheTTLSeconds int     `env:"CACHE_TTL_SECONDS" envDefault:"900"`
	DefaultLang     string  `env:"DEFAULT_LANG" envDefault:"en"`
	GuestRPS        float64 `env:"GUEST_RPS" envDefault:"2"`
	GuestBurst      int     `env:"GUEST_BURST" envDefault:"5"`
	TrustProxy      bool    `env:"TRUST_PROXY" envDefault:"false"`
	PublishWorkers  int     `env:"PUBLISH_WORKERS" envDefault:"4"`
	RequestTimeout  int     `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"15"`
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c Config) Timeout() time.Duration { return time.Duration(c.RequestTimeout) * time.Second }

func (c Config) UseRedis() bool { return c.RedisAddr != "" }

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverFile, DriverMySQL:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverFile, DriverMySQL, c.StorageDriver)
	}
	if !domain.IsSupportedLanguage(c.DefaultLang) {
		return fmt.Errorf("DEFAULT_LANG %q is not a supported language", c.DefaultLang)
	}
	if c.PublishWorkers <= 0 {
		return fmt.Errorf("PUBLISH_WORKERS must be positive")
	}
	if !c.UseRedis() {
		log.Warn().Msg("REDIS_ADDR is empty; public views are not cached")
	}
	return nil
}
