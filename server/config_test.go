package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfigEnvDefaults(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("CLIENT_DIR", "/srv/client")
	t.Setenv("DB_PATH", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9999" || cfg.ClientDir != "/srv/client" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.DBPath != "" {
		t.Errorf("an empty DB_PATH disables the database, got %q", cfg.DBPath)
	}
	if cfg.OTLPEndpoint != "collector:4317" {
		t.Errorf("expected otlp endpoint, got %q", cfg.OTLPEndpoint)
	}
}

func TestParseConfigFlagsWin(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	cfg, err := ParseConfig([]string{"-addr", ":7000", "-db", "x.db", "-client", "web"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" || cfg.DBPath != "x.db" || cfg.ClientDir != "web" {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	if _, err := ParseConfig([]string{"-nope"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(path, []byte("ARENA_TEST_DOTENV=loaded\n"), 0o644)
	t.Setenv("ARENA_TEST_DOTENV", "")
	os.Unsetenv("ARENA_TEST_DOTENV")

	loadDotEnv(path)
	if got := os.Getenv("ARENA_TEST_DOTENV"); got != "loaded" {
		t.Errorf("expected value from .env, got %q", got)
	}

	// missing files are fine
	loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}
