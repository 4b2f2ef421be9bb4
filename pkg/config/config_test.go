package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dexhook/signal-gateway/pkg/network"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  host: localhost\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("server.port default = %d", cfg.Server.Port)
	}
	if cfg.Vault.MasterKeyEnv != "VAULT_MASTER_KEY" {
		t.Fatalf("vault.master_key_env default = %q", cfg.Vault.MasterKeyEnv)
	}
	if cfg.DefaultNetwork() != network.Testnet {
		t.Fatalf("default network = %v", cfg.DefaultNetwork())
	}
	if !cfg.Trading.DryRun {
		t.Fatal("trading must default to dry run")
	}
	if cfg.Shutdown.Timeout.Seconds() != 30 {
		t.Fatalf("shutdown.timeout default = %v", cfg.Shutdown.Timeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
database:
  host: db.internal
  user: gw
  password: pw
  database: gateway
networks:
  default: 1
trading:
  dry_run: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Fatalf("server.port = %d", cfg.Server.Port)
	}
	if cfg.DefaultNetwork() != network.Mainnet {
		t.Fatalf("default network = %v", cfg.DefaultNetwork())
	}
	if cfg.Trading.DryRun {
		t.Fatal("dry_run override not applied")
	}

	want := "host=db.internal port=5432 user=gw password=pw dbname=gateway sslmode=disable"
	if got := cfg.Database.GetConnectionString(); got != want {
		t.Fatalf("connection string = %q", got)
	}
}

func TestLoad_InvalidDefaultNetwork(t *testing.T) {
	path := writeConfig(t, "database:\n  host: localhost\nnetworks:\n  default: 5\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unsupported default network")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
