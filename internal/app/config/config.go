package config

import (
	"log/slog"
	"time"
)

type LogLeveler string

func (l LogLeveler) Level() slog.Level {
	var level slog.Level

	_ = level.UnmarshalText([]byte(l))

	return level
}

// Config holds the server configuration.
type Config struct {
	LogLevel  LogLeveler `mapstructure:"LOG_LEVEL"`
	HTTP      HTTP       `mapstructure:",squash"`
	Redis     Redis      `mapstructure:",squash"`
	Search    Search     `mapstructure:",squash"`
	Sources   Source     `mapstructure:",squash"`
	RateLimit RateLimit  `mapstructure:",squash"`
	Rewards   Rewards    `mapstructure:",squash"`
	Events    Events     `mapstructure:",squash"`
}

type HTTP struct {
	Port    int           `mapstructure:"HTTP_PORT"`
	Timeout time.Duration `mapstructure:"HTTP_TIMEOUT"`
}

type Redis struct {
	Addr     string        `mapstructure:"REDIS_ADDR"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	Timeout  time.Duration `mapstructure:"REDIS_TIMEOUT"`
}

type Search struct {
	SourceTimeout time.Duration `mapstructure:"SEARCH_SOURCE_TIMEOUT"`
	MaxConcurrent int           `mapstructure:"SEARCH_MAX_CONCURRENT"`
	CacheTTL      time.Duration `mapstructure:"SEARCH_CACHE_TTL"`
	RecordTTL     time.Duration `mapstructure:"SEARCH_RECORD_TTL"`
}

// AmadeusSource holds the upstream configuration for the Amadeus adapter.
type AmadeusSource struct {
	BaseURL      string        `mapstructure:"AMADEUS_SOURCE_BASE_URL"`
	APIKey       string        `mapstructure:"AMADEUS_SOURCE_API_KEY"`
	APISecret    string        `mapstructure:"AMADEUS_SOURCE_API_SECRET"`
	Timeout      time.Duration `mapstructure:"AMADEUS_SOURCE_TIMEOUT"`
	MaxRetries   int           `mapstructure:"AMADEUS_SOURCE_MAX_RETRIES"`
	RateLimitRPS int           `mapstructure:"AMADEUS_SOURCE_RATE_LIMIT"`
}

type SabreSource struct {
	BaseURL      string        `mapstructure:"SABRE_SOURCE_BASE_URL"`
	APIKey       string        `mapstructure:"SABRE_SOURCE_API_KEY"`
	Timeout      time.Duration `mapstructure:"SABRE_SOURCE_TIMEOUT"`
	MaxRetries   int           `mapstructure:"SABRE_SOURCE_MAX_RETRIES"`
	RateLimitRPS int           `mapstructure:"SABRE_SOURCE_RATE_LIMIT"`
}

type SkyscannerSource struct {
	BaseURL      string        `mapstructure:"SKYSCANNER_SOURCE_BASE_URL"`
	APIKey       string        `mapstructure:"SKYSCANNER_SOURCE_API_KEY"`
	Timeout      time.Duration `mapstructure:"SKYSCANNER_SOURCE_TIMEOUT"`
	MaxRetries   int           `mapstructure:"SKYSCANNER_SOURCE_MAX_RETRIES"`
	RateLimitRPS int           `mapstructure:"SKYSCANNER_SOURCE_RATE_LIMIT"`
}

type Source struct {
	AmadeusSource    AmadeusSource    `mapstructure:",squash"`
	SabreSource      SabreSource      `mapstructure:",squash"`
	SkyscannerSource SkyscannerSource `mapstructure:",squash"`
}

type RateLimit struct {
	PerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	PerHour   int `mapstructure:"RATE_LIMIT_PER_HOUR"`
}

type Rewards struct {
	ProgramsFile string `mapstructure:"REWARDS_PROGRAMS_FILE"`
}

type Events struct {
	Channel string `mapstructure:"EVENTS_CHANNEL"`
}
