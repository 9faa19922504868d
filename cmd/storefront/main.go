package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(config.Shop, *cfgPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	sink := applog.Setup("shop", cfg.Log.Level, cfg.Log.File)
	defer sink.Close()

	ctx, cancel := server.WithSignals(context.Background())
	defer cancel()

	db, err := repos.OpenDB(cfg.DB.DSN)
	if err != nil {
		slog.Error("open db", "dsn", cfg.DB.DSN, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	var in handlers.Integrations
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("redis unavailable, idempotency disabled", "addr", cfg.Redis.Addr, "err", err)
		} else {
			defer rdb.Close()
			in.Idem = cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
		}
	}
	if cfg.Rabbit.URL != "" {
		pub, err := events.DialRabbit(cfg.Rabbit.URL)
		if err != nil {
			slog.Warn("rabbitmq unavailable, order events disabled", "err", err)
		} else {
			defer pub.Close()
			in.Events = pub
		}
	}

	app := handlers.NewShopApp(handlers.NewShopDeps(db, cfg, in), cfg)
	if err := server.Serve(ctx, app, cfg.App.HTTPAddr); err != nil {
		slog.Error("server", "err", err)
		os.Exit(1)
	}
}
