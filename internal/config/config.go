// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on images without zoneinfo

	"github.com/joho/godotenv"

	"github.com/mmynk/debtplan/internal/money"
	"github.com/mmynk/debtplan/internal/scheduler"
	"github.com/mmynk/debtplan/pkg/logging"
)

// DevJWTSecret is used when JWT_SECRET is unset. Never use it in production.
const DevJWTSecret = "dev-secret-change-me"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port        int
	DBDriver    string
	DBPath      string
	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	// Location decides which calendar day "today" is.
	Location *time.Location
	Locale   string
	Currency string

	OverpaymentPolicy scheduler.OverpaymentPolicy
	// ScheduleHorizon bounds the occurrences listed for open-ended schedules.
	ScheduleHorizon int

	StaticPath string
	LogLevel   slog.Level
	LogFormat  string
}

// Load reads .env (when present) into the process environment without
// overriding variables already set, then builds the Config.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the Config from a variable lookup function. All invalid
// values are reported together.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	getenv := func(k, def string) string {
		if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs []error
	c := &Config{
		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		DBPath:      getenv("DB_PATH", "./data/debtplan.db"),
		DatabaseURL: getenv("DATABASE_URL", ""),
		JWTSecret:   getenv("JWT_SECRET", DevJWTSecret),
		Locale:      getenv("LOCALE", "pt-BR"),
		Currency:    strings.ToUpper(getenv("CURRENCY", "BRL")),
		StaticPath:  getenv("STATIC_PATH", "./static"),
		LogFormat:   strings.ToLower(getenv("LOG_FORMAT", "text")),
	}

	var err error
	if c.Port, err = strconv.Atoi(getenv("PORT", "8080")); err != nil || c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a TCP port number, got %q", getenv("PORT", "")))
	}

	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}

	if c.TokenTTL, err = time.ParseDuration(getenv("TOKEN_TTL", "24h")); err != nil || c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be a positive duration, got %q", getenv("TOKEN_TTL", "")))
	}

	if c.Location, err = time.LoadLocation(getenv("TIMEZONE", "America/Sao_Paulo")); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}

	if _, err := money.NewFormatter(c.Locale, c.Currency); err != nil {
		errs = append(errs, fmt.Errorf("LOCALE/CURRENCY: %w", err))
	}

	if c.OverpaymentPolicy, err = scheduler.ParseOverpaymentPolicy(getenv("OVERPAYMENT_POLICY", "allow")); err != nil {
		errs = append(errs, fmt.Errorf("OVERPAYMENT_POLICY: %w", err))
	}

	if c.ScheduleHorizon, err = strconv.Atoi(getenv("SCHEDULE_HORIZON", "24")); err != nil || c.ScheduleHorizon < 1 || c.ScheduleHorizon > MaxScheduleHorizon {
		errs = append(errs, fmt.Errorf("SCHEDULE_HORIZON must be between 1 and %d", MaxScheduleHorizon))
	}

	c.LogLevel = logging.ParseLevel(getenv("LOG_LEVEL", "info"))
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// MaxScheduleHorizon caps any single schedule listing.
const MaxScheduleHorizon = 520

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UsesDevSecret reports whether JWT_SECRET was left at its default.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}
