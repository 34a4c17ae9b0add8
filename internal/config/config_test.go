package config

import (
	"testing"
	"time"
)

func TestDefaultAppliesStructTagDefaults(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout of 30s, got %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("expected default max retries of 3, got %d", cfg.MaxRetries)
	}
	if cfg.RetryWaitMS != 100 {
		t.Fatalf("expected default retry wait of 100ms, got %d", cfg.RetryWaitMS)
	}
}

func TestFromMapOverridesDefaultsAndCoercesDuration(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"timeout":     "5s",
		"max_retries": 1,
		"debug":       true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("expected overridden timeout of 5s, got %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 1 {
		t.Fatalf("expected overridden max retries of 1, got %d", cfg.MaxRetries)
	}
	if cfg.RetryWaitMS != 100 {
		t.Fatalf("expected retry wait to keep its default of 100ms, got %d", cfg.RetryWaitMS)
	}
	if !cfg.Debug {
		t.Fatal("expected debug to be overridden to true")
	}
}

func TestFromMapEmptyReturnsDefaults(t *testing.T) {
	cfg, err := FromMap(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}
}

func TestToClientConfigAdaptsFields(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client := cfg.ToClientConfig()
	if client.Timeout != cfg.Timeout || client.MaxRetries != cfg.MaxRetries || client.RetryWaitMS != cfg.RetryWaitMS || client.Debug != cfg.Debug {
		t.Fatalf("expected ToClientConfig to carry every field through unchanged, got %+v from %+v", client, cfg)
	}
}
