package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Bulkhead.Limit != 32 {
		t.Fatalf("expected default limit 32, got %d", cfg.Bulkhead.Limit)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Fatalf("expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	t.Setenv("BULKHEAD_LIMIT", "64")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BULKHEAD_GRPC_PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bulkhead.Limit != 64 {
		t.Fatalf("expected limit 64, got %d", cfg.Bulkhead.Limit)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected level debug, got %s", cfg.Log.Level)
	}
	if cfg.Server.GRPCPort != 9999 {
		t.Fatalf("expected grpc port 9999, got %d", cfg.Server.GRPCPort)
	}
}

func TestLoad_ignoresNonPositiveLimitOverride(t *testing.T) {
	t.Setenv("BULKHEAD_LIMIT", "0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bulkhead.Limit != 32 {
		t.Fatalf("expected default limit to survive non-positive override, got %d", cfg.Bulkhead.Limit)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bulkhead.yaml")
	content := []byte("server:\n  host: 127.0.0.1\n  grpcPort: 7000\nbulkhead:\n  limit: 16\nlog:\n  level: warn\n  format: text\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.GRPCPort != 7000 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Bulkhead.Limit != 16 {
		t.Fatalf("expected limit 16, got %d", cfg.Bulkhead.Limit)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadFile_missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
