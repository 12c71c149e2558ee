package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig
	Cache  CacheConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type CacheConfig struct {
	// Dir is the directory holding one JSON file per cached key.
	Dir string
	// DefaultTTL applies to writes that carry no explicit TTL.
	DefaultTTL time.Duration
	// MaxMemoryItems bounds the memory tier (admission cutoff, no eviction).
	MaxMemoryItems int
	// SweepInterval is the period of the background expiration sweep.
	SweepInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

// fileConfig is the optional YAML config file shape. Cache option names match
// the recognized option set (defaultTtlSeconds, maxMemoryItems,
// sweepIntervalMillis) so a config file written for the original cache keeps
// working. Zero values mean "not set" and leave the compiled defaults alone.
type fileConfig struct {
	Server struct {
		Host         string `yaml:"host"`
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
		IdleTimeout  string `yaml:"idleTimeout"`
	} `yaml:"server"`
	Cache struct {
		Dir                 string `yaml:"dir"`
		DefaultTTLSeconds   int    `yaml:"defaultTtlSeconds"`
		MaxMemoryItems      int    `yaml:"maxMemoryItems"`
		SweepIntervalMillis int    `yaml:"sweepIntervalMillis"`
	} `yaml:"cache"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load builds the configuration in three layers: compiled defaults, then the
// optional YAML file named by DISKCACHE_CONFIG, then environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Cache: CacheConfig{
			Dir:            "./data/cache",
			DefaultTTL:     time.Hour,
			MaxMemoryItems: 1000,
			SweepInterval:  5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path := os.Getenv("DISKCACHE_CONFIG"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getDurationEnv("SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Cache.Dir = getEnv("CACHE_DIR", cfg.Cache.Dir)
	cfg.Cache.DefaultTTL = getDurationEnv("CACHE_DEFAULT_TTL", cfg.Cache.DefaultTTL)
	cfg.Cache.MaxMemoryItems = getIntEnv("CACHE_MAX_MEMORY_ITEMS", cfg.Cache.MaxMemoryItems)
	cfg.Cache.SweepInterval = getDurationEnv("CACHE_SWEEP_INTERVAL", cfg.Cache.SweepInterval)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Server.Host != "" {
		cfg.Server.Host = fc.Server.Host
	}
	if fc.Server.Port != "" {
		cfg.Server.Port = fc.Server.Port
	}
	if d, err := time.ParseDuration(fc.Server.ReadTimeout); err == nil && fc.Server.ReadTimeout != "" {
		cfg.Server.ReadTimeout = d
	}
	if d, err := time.ParseDuration(fc.Server.WriteTimeout); err == nil && fc.Server.WriteTimeout != "" {
		cfg.Server.WriteTimeout = d
	}
	if d, err := time.ParseDuration(fc.Server.IdleTimeout); err == nil && fc.Server.IdleTimeout != "" {
		cfg.Server.IdleTimeout = d
	}
	if fc.Cache.Dir != "" {
		cfg.Cache.Dir = fc.Cache.Dir
	}
	if fc.Cache.DefaultTTLSeconds > 0 {
		cfg.Cache.DefaultTTL = time.Duration(fc.Cache.DefaultTTLSeconds) * time.Second
	}
	if fc.Cache.MaxMemoryItems > 0 {
		cfg.Cache.MaxMemoryItems = fc.Cache.MaxMemoryItems
	}
	if fc.Cache.SweepIntervalMillis > 0 {
		cfg.Cache.SweepInterval = time.Duration(fc.Cache.SweepIntervalMillis) * time.Millisecond
	}
	if fc.Log.Level != "" {
		cfg.Log.Level = fc.Log.Level
	}
	if fc.Log.Format != "" {
		cfg.Log.Format = fc.Log.Format
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
