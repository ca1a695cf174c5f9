package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Progress store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		Name string `yaml:"name"`
		Dir  string `yaml:"dir"`
		TTL  string `yaml:"ttl"`
	} `yaml:"quiz"`
	Progress struct {
		Store string `yaml:"store"`
		Key   string `yaml:"key"`
	} `yaml:"progress"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads YAML config from path and fills in defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Quiz.Name == "" {
		c.Quiz.Name = "quiz"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "data/progress.db"
	}
	if c.Progress.Store == "" {
		c.Progress.Store = StoreMemory
	}
	c.Progress.Store = strings.ToLower(c.Progress.Store)
}

// Validate checks that the selected progress store has what it needs.
func (c Config) Validate() error {
	switch c.Progress.Store {
	case StoreMemory, StoreSQLite:
		return nil
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("progress store %q requires redis.addr", c.Progress.Store)
		}
		return nil
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("progress store %q requires postgres.url", c.Progress.Store)
		}
		return nil
	default:
		return fmt.Errorf("unknown progress store %q", c.Progress.Store)
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
