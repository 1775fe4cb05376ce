package config

import (
	"errors"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment       string `env:"ENV" env-default:"development"`
	Storage           string `env:"STORAGE" env-default:"postgres"`
	DBDSN             string `env:"DB_DSN"`
	MigrationsEnabled bool   `env:"MIGRATIONS_ENABLED" env-default:"true"`

	HTTPServer HTTPServer
	Scheduling Scheduling
	Jobs       Jobs
	Telegram   Telegram
	Redis      Redis
}

type HTTPServer struct {
	Address         string        `env:"HTTP_ADDRESS" env-default:"0.0.0.0:8080"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	RequestsPerMin  int           `env:"HTTP_REQUESTS_PER_MINUTE" env-default:"120"`
}

type Scheduling struct {
	Timezone       string        `env:"TIMEZONE" env-default:"America/Sao_Paulo"`
	ReleaseTime    string        `env:"RELEASE_TIME" env-default:"09:10"`
	CooldownDays   int           `env:"COOLDOWN_DAYS" env-default:"15"`
	CancelLeadTime time.Duration `env:"CANCEL_LEAD_TIME" env-default:"30m"`
	OpeningTime    string        `env:"OPENING_TIME" env-default:"08:00"`
	ClosingTime    string        `env:"CLOSING_TIME" env-default:"18:00"`
	OpeningMargin  time.Duration `env:"OPENING_MARGIN" env-default:"10m"`
	ClosingMargin  time.Duration `env:"CLOSING_MARGIN" env-default:"30m"`
}

// Jobs are cron expressions evaluated in the scheduling timezone.
type Jobs struct {
	CompletionSchedule string `env:"JOB_COMPLETION_SCHEDULE" env-default:"@every 15m"`
	ResetSchedule      string `env:"JOB_RESET_SCHEDULE" env-default:"0 0 * * 1"`
}

type Telegram struct {
	Token       string  `env:"TELEGRAM_TOKEN"`
	AdminChats  []int64 `env:"TELEGRAM_ADMIN_CHATS" env-separator:","`
	NotifyRate  float64 `env:"TELEGRAM_NOTIFY_RATE" env-default:"1"`
	NotifyBurst int     `env:"TELEGRAM_NOTIFY_BURST" env-default:"5"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	Channel  string `env:"REDIS_CHANNEL" env-default:"barbearia:updates"`
}

func Load() (*Config, error) {
	// .env is optional, real environment variables win
	if err := godotenv.Load(".env"); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Storage {
	case StoragePostgres:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for postgres storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE %q", c.Storage))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := model.ParseTimeOfDay(c.Scheduling.ReleaseTime); err != nil {
		errs = append(errs, fmt.Errorf("RELEASE_TIME: %w", err))
	}
	if c.Scheduling.CooldownDays < 0 {
		errs = append(errs, errors.New("COOLDOWN_DAYS must not be negative"))
	}
	if _, err := c.OpeningHours(); err != nil {
		errs = append(errs, err)
	}
	if c.Telegram.NotifyRate <= 0 {
		errs = append(errs, errors.New("TELEGRAM_NOTIFY_RATE must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduling.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}

// OpeningHours are the defaults used until an admin stores others.
func (c *Config) OpeningHours() (model.OpeningHours, error) {
	opening, err := model.ParseTimeOfDay(c.Scheduling.OpeningTime)
	if err != nil {
		return model.OpeningHours{}, fmt.Errorf("OPENING_TIME: %w", err)
	}
	closing, err := model.ParseTimeOfDay(c.Scheduling.ClosingTime)
	if err != nil {
		return model.OpeningHours{}, fmt.Errorf("CLOSING_TIME: %w", err)
	}
	if opening.Minutes() >= closing.Minutes() {
		return model.OpeningHours{}, errors.New("OPENING_TIME must be before CLOSING_TIME")
	}
	return model.OpeningHours{Opening: opening, Closing: closing}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
