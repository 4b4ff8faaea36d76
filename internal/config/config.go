package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Sheet source. CATALOG_SOURCE_URL wins over the Sheets API when set.
	SourceURL      string        `envconfig:"CATALOG_SOURCE_URL" validate:"omitempty,url"`
	SheetsAPIKey   string        `envconfig:"SHEETS_API_KEY" validate:"required_without=SourceURL"`
	SheetID        string        `envconfig:"SHEET_ID" validate:"required_without=SourceURL"`
	SheetName      string        `envconfig:"SHEET_NAME" default:"Products" validate:"required"`
	SheetMaxRows   int           `envconfig:"SHEET_MAX_ROWS" default:"1000" validate:"gte=2"`
	SheetsEndpoint string        `envconfig:"SHEETS_ENDPOINT" validate:"omitempty,url"`
	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"60s"`

	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`
	PublicBaseURL string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080" validate:"url"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	RedisURL      string        `envconfig:"REDIS_URL" default:"127.0.0.1:6379"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	MetricsPort   string        `envconfig:"METRICS_PORT" default:"9090"`
	WorkerCount   int           `envconfig:"WORKER_COUNT" default:"8" validate:"gte=1"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	// .env na raiz do projeto, depois no diretório atual
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SheetRange is the fixed window requested from the Sheets API, header row included.
func (c *Config) SheetRange() string {
	return fmt.Sprintf("%s!1:%d", c.SheetName, c.SheetMaxRows)
}
