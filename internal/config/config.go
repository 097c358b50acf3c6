// Package config loads the layered service configuration: base.yaml, an
// optional per-environment overlay, then CMB_ environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogPath  string `koanf:"log_path"`
	} `koanf:"app"`

	Store struct {
		// Backend selects the order store: memory | dynamodb | postgres.
		Backend     string `koanf:"backend"`
		OrdersTable string `koanf:"orders_table"`
		PostgresDSN string `koanf:"postgres_dsn"`
	} `koanf:"store"`

	Checkout struct {
		IdempotencyTable string        `koanf:"idempotency_table"`
		IdempotencyTTL   time.Duration `koanf:"idempotency_ttl"`
	} `koanf:"checkout"`

	Notify struct {
		QueueURL string `koanf:"queue_url"`
	} `koanf:"notify"`

	Cache struct {
		RedisAddr string        `koanf:"redis_addr"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"cache"`

	Metrics struct {
		Namespace string `koanf:"namespace"`
	} `koanf:"metrics"`
}

// Load reads <pathDir>/base.yaml, overlays <pathDir>/<envName>.yaml when
// present, then CMB_ environment variables (nested keys with __, e.g.
// CMB_STORE__POSTGRES_DSN).
func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// overlay is optional; local runs work from base alone
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	if err := k.Load(env.Provider("CMB_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CMB_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "dynamodb":
		if c.Store.OrdersTable == "" {
			return fmt.Errorf("store.orders_table required for dynamodb backend")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgres_dsn required for postgres backend")
		}
	default:
		return fmt.Errorf("store.backend must be memory, dynamodb or postgres")
	}
	if c.Checkout.IdempotencyTTL <= 0 {
		return fmt.Errorf("checkout.idempotency_ttl must be positive")
	}
	return nil
}
