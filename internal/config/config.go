package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
	} `koanf:"app"`

	DB struct {
		DSN string `koanf:"dsn"`
	} `koanf:"db"`

	Log struct {
		Level string `koanf:"level"`
		File  string `koanf:"file"`
	} `koanf:"log"`

	Auth struct {
		Secret   string        `koanf:"secret"`
		Issuer   string        `koanf:"issuer"`
		Audience string        `koanf:"audience"`
		TTL      time.Duration `koanf:"ttl"`
	} `koanf:"auth"`

	Image struct {
		Root          string        `koanf:"root"`
		BaseURL       string        `koanf:"base_url"`
		ResizeEnabled bool          `koanf:"resize_enabled"`
		PathSanitize  bool          `koanf:"path_sanitize"`
		CacheTTL      time.Duration `koanf:"cache_ttl"`
	} `koanf:"image"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	RateLimit struct {
		Max    int           `koanf:"max"`
		Window time.Duration `koanf:"window"`
	} `koanf:"rate_limit"`
}

// Service selects the defaults and environment prefix.
type Service string

const (
	Shop Service = "shop"
	Sdet Service = "sdet"
)

func defaults(svc Service) map[string]any {
	m := map[string]any{
		"app.name":             string(svc),
		"app.http_addr":        ":8080",
		"db.dsn":               "storefront.db",
		"log.level":            "info",
		"log.file":             "",
		"auth.secret":          "dev-secret-change-me",
		"auth.issuer":          "storefront",
		"auth.audience":        string(svc),
		"auth.ttl":             time.Hour,
		"image.root":           "./img",
		"image.base_url":       "/api/images/products",
		"image.resize_enabled": false,
		"image.path_sanitize":  true,
		"image.cache_ttl":      time.Duration(0),
		"redis.addr":           "",
		"redis.db":             0,
		"idempotency.ttl":      24 * time.Hour,
		"rabbitmq.url":         "",
		"rate_limit.max":       120,
		"rate_limit.window":    time.Minute,
	}
	if svc == Sdet {
		m["app.http_addr"] = ":8081"
		m["db.dsn"] = "sdet.db"
	}
	return m
}

// Load layers defaults, an optional YAML file and the environment. Variables use the
// service prefix and "__" for nesting, e.g. SHOP_DB__DSN or SDET_AUTH__SECRET.
func Load(svc Service, path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(svc), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("load %s: %w", path, err)
			}
			slog.Warn("config file not found, using defaults", "path", path)
		}
	}

	prefix := strings.ToUpper(string(svc)) + "_"
	if err := k.Load(env.Provider(prefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, prefix)
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
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn required")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret required")
	}
	if c.Auth.TTL <= 0 {
		return fmt.Errorf("auth.ttl must be positive")
	}
	if c.RateLimit.Max <= 0 {
		return fmt.Errorf("rate_limit.max must be positive")
	}
	return nil
}
