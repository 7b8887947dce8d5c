package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Log       LogConfig       `yaml:"log"`
}

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"` // redis and memory drivers only
}

type LifecycleConfig struct {
	CreditsPerDelivery   int    `yaml:"credits_per_delivery"`
	RupeesPerCredit      int    `yaml:"rupees_per_credit"`
	SponsorSlots         int    `yaml:"sponsor_slots"`
	DefaultVolunteerID   string `yaml:"default_volunteer_id"`
	DefaultVolunteerName string `yaml:"default_volunteer_name"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "./data/foodshare.db",
			RedisAddr:  "localhost:6379",
		},
		Lifecycle: LifecycleConfig{
			CreditsPerDelivery:   10,
			RupeesPerCredit:      5,
			SponsorSlots:         4,
			DefaultVolunteerID:   "volunteer-123",
			DefaultVolunteerName: "John Doe",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Store.Driver = getEnv("FOODSHARE_STORE", c.Store.Driver)
	c.Store.SQLitePath = getEnv("FOODSHARE_DB_PATH", c.Store.SQLitePath)
	c.Store.RedisAddr = getEnv("REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = getEnv("REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = getEnvInt("REDIS_DB", c.Store.RedisDB)
	c.Store.KeyPrefix = getEnv("FOODSHARE_KEY_PREFIX", c.Store.KeyPrefix)

	c.Lifecycle.CreditsPerDelivery = getEnvInt("FOODSHARE_CREDITS_PER_DELIVERY", c.Lifecycle.CreditsPerDelivery)
	c.Lifecycle.RupeesPerCredit = getEnvInt("FOODSHARE_RUPEES_PER_CREDIT", c.Lifecycle.RupeesPerCredit)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path must be set for the sqlite driver")
		}
	case DriverMemory:
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr must be set for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q (want sqlite, memory or redis)", c.Store.Driver)
	}

	if c.Lifecycle.CreditsPerDelivery <= 0 {
		return errors.New("lifecycle.credits_per_delivery must be positive")
	}
	if c.Lifecycle.RupeesPerCredit <= 0 {
		return errors.New("lifecycle.rupees_per_credit must be positive")
	}
	if c.Lifecycle.SponsorSlots <= 0 {
		return errors.New("lifecycle.sponsor_slots must be positive")
	}
	if c.Lifecycle.DefaultVolunteerID == "" {
		return errors.New("lifecycle.default_volunteer_id must be set")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
