package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vaultpass/ecomkit-go/internal/crypto"
)

var (
	ErrWeakJWTSecret = errors.New("JWT_SECRET must be at least 32 characters in production")
	ErrInvalidBounds = errors.New("invalid configuration bounds")
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DatabaseDSN enables the artifact audit trail when set.
	DatabaseDSN string `env:"DATABASE_DSN"`
	// JWTSecret protects the batch routes when set.
	JWTSecret string `env:"JWT_SECRET"`

	RateLimitWindow      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	AllowedOrigins       []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	BodyLimitBytes       int64         `env:"BODY_LIMIT_BYTES" envDefault:"10485760"`
	BatchWorkers         int           `env:"BATCH_WORKERS" envDefault:"8"`

	Password PasswordDefaults
}

// PasswordDefaults are applied to password requests that leave fields unset.
type PasswordDefaults struct {
	Length            int  `env:"PASSWORD_LENGTH" envDefault:"12"`
	UppercaseLetters  bool `env:"UPPERCASE_LETTERS" envDefault:"true"`
	LowercaseLetters  bool `env:"LOWERCASE_LETTERS" envDefault:"true"`
	Numbers           bool `env:"NUMBERS" envDefault:"true"`
	SpecialCharacters bool `env:"SPECIAL_CHARACTERS" envDefault:"true"`
}

// GenerationConfig converts the defaults into a generator config.
func (d PasswordDefaults) GenerationConfig() crypto.GenerationConfig {
	return crypto.GenerationConfig{
		Length:              d.Length,
		IncludeUppercase:    d.UppercaseLetters,
		IncludeLowercase:    d.LowercaseLetters,
		IncludeNumbers:      d.Numbers,
		IncludeSpecialChars: d.SpecialCharacters,
	}
}

// IsProduction reports whether ENV is production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Load parses the environment. Call godotenv first to pick up a .env file.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.IsProduction() && c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return ErrWeakJWTSecret
	}
	if c.RateLimitWindow <= 0 || c.RateLimitMaxRequests <= 0 {
		return fmt.Errorf("%w: rate limit window and max requests must be positive", ErrInvalidBounds)
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("%w: BATCH_WORKERS must be positive", ErrInvalidBounds)
	}
	if c.BodyLimitBytes <= 0 {
		return fmt.Errorf("%w: BODY_LIMIT_BYTES must be positive", ErrInvalidBounds)
	}
	if c.Password.Length < crypto.MinLength || c.Password.Length > crypto.MaxLength {
		return fmt.Errorf("%w: PASSWORD_LENGTH must be between %d and %d", ErrInvalidBounds, crypto.MinLength, crypto.MaxLength)
	}
	return nil
}
