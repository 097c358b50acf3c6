package config

import (
	"os"
	"path/filepath"
	"testing"
)

const baseYAML = `
app:
  name: order-service
  http_addr: ":8080"
store:
  backend: memory
checkout:
  idempotency_ttl: 48h
cache:
  ttl: 5m
`

func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoad_BaseOnly(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"base.yaml": baseYAML})

	cfg, err := Load(dir, "dev")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.HTTPAddr != ":8080" || cfg.Store.Backend != "memory" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Checkout.IdempotencyTTL.Hours() != 48 {
		t.Fatalf("ttl = %v", cfg.Checkout.IdempotencyTTL)
	}
}

func TestLoad_EnvOverlayWins(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		"base.yaml": baseYAML,
		"prod.yaml": "store:\n  backend: dynamodb\n  orders_table: cmb-orders\n",
	})

	cfg, err := Load(dir, "prod")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Backend != "dynamodb" || cfg.Store.OrdersTable != "cmb-orders" {
		t.Fatalf("overlay not applied: %+v", cfg.Store)
	}
}

func TestLoad_EnvVarsOverrideFiles(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"base.yaml": baseYAML})
	t.Setenv("CMB_APP__HTTP_ADDR", ":9090")

	cfg, err := Load(dir, "dev")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.HTTPAddr != ":9090" {
		t.Fatalf("env var not applied: %q", cfg.App.HTTPAddr)
	}
}

func TestValidate_BackendRequirements(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		"base.yaml": "store:\n  backend: dynamodb\ncheckout:\n  idempotency_ttl: 1h\n",
	})
	if _, err := Load(dir, "dev"); err == nil {
		t.Fatal("expected error for dynamodb backend without a table name")
	}
}
