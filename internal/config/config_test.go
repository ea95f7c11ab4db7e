package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sitesmith/core/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DSN", "user:pass@tcp(localhost:3306)/sitesmith")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 2333 {
		t.Errorf("port = %d", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.BaseDomain != "localhost" {
		t.Errorf("base domain = %q", cfg.BaseDomain)
	}
	if cfg.Uploads.PublicBase != "/uploads" {
		t.Errorf("uploads base = %q", cfg.Uploads.PublicBase)
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DSN", "")
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("Load succeeded without a DSN")
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `
port: 8080
dsn: from-yaml
env: production
base_domain: https://sites.example.com
wiki:
  farm_api: https://farm.example.com/api.php
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "9090")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, env override lost", cfg.Port)
	}
	if cfg.DSN != "from-yaml" {
		t.Errorf("dsn = %q", cfg.DSN)
	}
	if cfg.Protocol != "https" {
		t.Errorf("protocol = %q, want https in production", cfg.Protocol)
	}
	if cfg.BaseDomain != "sites.example.com" {
		t.Errorf("base domain = %q, scheme not stripped", cfg.BaseDomain)
	}
	if got := cfg.WikiAPIURL("acme"); got != "https://acme.sites.example.com/api.php" {
		t.Errorf("wiki api url = %q", got)
	}
}
