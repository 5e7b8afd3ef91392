package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
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
	Gateway struct {
		BaseURL string `yaml:"baseUrl"`
		Timeout string `yaml:"timeout"`
	} `yaml:"gateway"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Quiz struct {
		MemoryDistractors int    `yaml:"memoryDistractors"`
		HardDistractors   int    `yaml:"hardDistractors"`
		ReviewAutoRemove  bool   `yaml:"reviewAutoRemove"`
		SessionTTL        string `yaml:"sessionTtl"`
	} `yaml:"quiz"`
	Writeback struct {
		Timeout     string `yaml:"timeout"`
		Concurrency int64  `yaml:"concurrency"`
	} `yaml:"writeback"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
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

// IntOr returns v, or fallback when v is not positive.
func IntOr[T int | int64](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}
