// Package config loads process configuration from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/imrishuroy/go-order-notify/internal/mail"
	"github.com/imrishuroy/go-order-notify/internal/notify"
	"github.com/imrishuroy/go-order-notify/internal/records"
)

// ErrInvalidConfig wraps every parse or validation failure from Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// App holds the HTTP surface settings.
type App struct {
	Env         string   `env:"APP_ENV" envDefault:"development"`
	Port        int      `env:"PORT" envDefault:"3000" validate:"min=1,max=65535"`
	RunLocal    bool     `env:"RUN_LOCAL"`
	APIURL      string   `env:"API_URL" validate:"omitempty,url"`
	TrustProxy  bool     `env:"TRUST_PROXY"`
	ImagesDir   string   `env:"IMAGES_DIR" envDefault:"images"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Config is the full process configuration.
type Config struct {
	App     App
	Mail    mail.Config
	Notify  notify.Config
	Records records.Config

	QueueURL            string `env:"ORDERS_QUEUE_URL" validate:"omitempty,url"`
	CloudWatchNamespace string `env:"CLOUDWATCH_NAMESPACE"`
	// LocalSQSBody is the job the worker processes when RUN_LOCAL is set.
	LocalSQSBody string `env:"LOCAL_SQS_BODY"`
}

var dotenvOnce sync.Once

// Load reads .env once (a missing file is fine), parses the environment and validates it.
// A missing mail transport is not an error here; sends report it instead.
func Load() (Config, error) {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.App.APIURL = strings.TrimSpace(cfg.App.APIURL)

	if err := validatorv10.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Addr is the listen address for local runs.
func (a App) Addr() string {
	return fmt.Sprintf(":%d", a.Port)
}

// Production reports whether APP_ENV names a deployed environment.
func (a App) Production() bool {
	switch a.Env {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}
