package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Game          GameConfig          `yaml:"game"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"` // sqlite|postgres
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-memory bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second per IP
	RateBurst int     `yaml:"rate_burst"`
}

// GameConfig holds the tuning of the size game.
type GameConfig struct {
	Cooldown time.Duration `yaml:"cooldown"`
	MinDelta int64         `yaml:"min_delta"`
	MaxDelta int64         `yaml:"max_delta"`
	TopLimit int           `yaml:"top_limit"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // json|text
	Environment string `yaml:"environment"`
}

const (
	DefaultDriver   = "sqlite"
	DefaultDSN      = "file:ruler.db?_pragma=busy_timeout(5000)"
	DefaultHTTPAddr = ":8080"
	DefaultCooldown = 24 * time.Hour
	DefaultMinDelta = -5
	DefaultMaxDelta = 10
	DefaultTopLimit = 10
)

var (
	ErrInvalidDeltaRange = errors.New("invalid delta range")
	ErrInvalidCooldown   = errors.New("cooldown must not be negative")
	ErrInvalidTopLimit   = errors.New("top_limit must be positive")
)

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTO_MIGRATE: %w", err)
		}
		cfg.Database.AutoMigrate = b
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_BURST: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("GAME_COOLDOWN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GAME_COOLDOWN: %w", err)
		}
		cfg.Game.Cooldown = d
	}
	if v := os.Getenv("GAME_MIN_DELTA"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GAME_MIN_DELTA: %w", err)
		}
		cfg.Game.MinDelta = n
	}
	if v := os.Getenv("GAME_MAX_DELTA"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GAME_MAX_DELTA: %w", err)
		}
		cfg.Game.MaxDelta = n
	}
	if v := os.Getenv("GAME_TOP_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GAME_TOP_LIMIT: %w", err)
		}
		cfg.Game.TopLimit = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

// ApplyDefaults fills every unset field. A zero delta range counts as unset.
func (c *Config) ApplyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Database.DSN == "" && c.Database.Driver == DefaultDriver {
		c.Database.DSN = DefaultDSN
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = 5
	}
	if c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = 10
	}
	if c.Game.Cooldown == 0 {
		c.Game.Cooldown = DefaultCooldown
	}
	if c.Game.MinDelta == 0 && c.Game.MaxDelta == 0 {
		c.Game.MinDelta = DefaultMinDelta
		c.Game.MaxDelta = DefaultMaxDelta
	}
	if c.Game.TopLimit == 0 {
		c.Game.TopLimit = DefaultTopLimit
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.LogFormat == "" {
		c.Observability.LogFormat = "json"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
}

// Validate rejects settings the game cannot run with.
func (c *Config) Validate() error {
	g := c.Game
	if g.MinDelta > g.MaxDelta {
		return fmt.Errorf("%w: min_delta %d > max_delta %d", ErrInvalidDeltaRange, g.MinDelta, g.MaxDelta)
	}
	if g.MinDelta == 0 && g.MaxDelta == 0 {
		return fmt.Errorf("%w: range holds only zero", ErrInvalidDeltaRange)
	}
	if g.Cooldown < 0 {
		return ErrInvalidCooldown
	}
	if g.TopLimit <= 0 {
		return ErrInvalidTopLimit
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required for driver %q", c.Database.Driver)
	}
	return nil
}
