package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4600 {
		t.Errorf("Server.Port = %d, want 4600", cfg.Server.Port)
	}
	if !cfg.Monitor.Enabled {
		t.Error("Monitor.Enabled = false, want true")
	}
	if cfg.Monitor.PollInterval != "1m" {
		t.Errorf("Monitor.PollInterval = %q, want 1m", cfg.Monitor.PollInterval)
	}
	if cfg.Pipeline.BatchConcurrency != 4 {
		t.Errorf("Pipeline.BatchConcurrency = %d, want 4", cfg.Pipeline.BatchConcurrency)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
}

func TestFileBackendValues(t *testing.T) {
	path := writeTempConfig(t, `{
		"server.port": 9000,
		"monitor.enabled": "false",
		"monitor.poll_interval": "30s",
		"log.level": "debug"
	}`)

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Monitor.Enabled {
		t.Error("Monitor.Enabled = true, want false")
	}
	if cfg.Monitor.PollInterval != "30s" {
		t.Errorf("Monitor.PollInterval = %q, want 30s", cfg.Monitor.PollInterval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ACCORD_SERVER_PORT", "5000")
	t.Setenv("ACCORD_LOG_LEVEL", "debug")

	path := writeTempConfig(t, `{"server.port": 9000}`)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want env override 5000", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverride_InvalidInt(t *testing.T) {
	t.Setenv("ACCORD_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4600 {
		t.Errorf("Server.Port = %d, want default 4600 on bad env value", cfg.Server.Port)
	}
}

func TestMonitorPollInterval(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"", time.Minute},
		{"garbage", time.Minute},
		{"-10s", time.Minute},
	}
	for _, tt := range tests {
		cfg := Config{}
		cfg.Monitor.PollInterval = tt.raw
		if got := cfg.MonitorPollInterval(); got != tt.want {
			t.Errorf("MonitorPollInterval(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.API.Token = "secret-token"

	for _, k := range ShowAll(cfg) {
		if k.Key == "api.token" {
			t.Error("ShowAll exposed api.token")
		}
		if strings.Contains(k.Value, "secret-token") {
			t.Errorf("ShowAll leaked secret in %s", k.Key)
		}
	}
}

func TestSetKeyRejectsUnknown(t *testing.T) {
	if err := SetKey("nope.nothing", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestGetAPIToken_Env(t *testing.T) {
	cfg := defaults()
	cfg.API.Token = "from-env"

	token, err := GetAPIToken(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "from-env" {
		t.Errorf("token = %q, want from-env", token)
	}
}

func TestGetAPIToken_GeneratesAndPersists(t *testing.T) {
	cfg := defaults()
	cfg.Storage.DataDir = t.TempDir()

	token, err := GetAPIToken(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a generated token")
	}

	again, err := GetAPIToken(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != token {
		t.Errorf("second call returned %q, want persisted %q", again, token)
	}
}
