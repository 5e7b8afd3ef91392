package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
gateway:
  baseUrl: https://example.test/users
  timeout: 3s
quiz:
  hardDistractors: 6
  reviewAutoRemove: true
writeback:
  concurrency: 2
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Gateway.BaseURL != "https://example.test/users" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.Quiz.ReviewAutoRemove || cfg.Quiz.HardDistractors != 6 {
		t.Fatalf("unexpected quiz config: %+v", cfg.Quiz)
	}
	if got := TTLDuration(cfg.Gateway.Timeout, time.Second); got != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", got)
	}
	if got := IntOr(cfg.Quiz.MemoryDistractors, 4); got != 4 {
		t.Fatalf("expected default memory distractors, got %d", got)
	}
	if got := IntOr(cfg.Writeback.Concurrency, 8); got != 2 {
		t.Fatalf("expected concurrency 2, got %d", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on bad input, got %v", got)
	}
}
