package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "addr: \":7000\"\nidle_timeout: 30s\nmotd: hello\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WIRECHAT_POOL_SIZE", "8")

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.IdleTimeout != 30*time.Second || cfg.MOTD != "hello" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.PoolSize != 8 {
		t.Fatalf("expected pool size from env, got %d", cfg.PoolSize)
	}
	if cfg.IdleCheckInterval != Default().IdleCheckInterval {
		t.Fatalf("expected default idle check interval, got %v", cfg.IdleCheckInterval)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pool_size: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(&logger, path); err == nil {
		t.Fatalf("expected validation error for pool_size 0")
	}
}

func TestUpdateFromKeepsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":9000", PoolSize: 2})

	if cfg.Addr != ":9000" || cfg.PoolSize != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.MOTD != Default().MOTD || cfg.IdleTimeout != Default().IdleTimeout {
		t.Fatalf("zero values should not overwrite: %+v", cfg)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Addr: ":6667"}, "ChatServer:6667"},
		{Config{Addr: "127.0.0.1:7000"}, "ChatServer:7000"},
		{Config{Addr: "bogus"}, "ChatServer"},
		{Config{Addr: ":6667", ServerName: "irc.local"}, "irc.local"},
	}
	for _, tt := range tests {
		if got := tt.cfg.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}
