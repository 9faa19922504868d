package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(config.Sdet, *cfgPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	sink := applog.Setup("sdet", cfg.Log.Level, cfg.Log.File)
	defer sink.Close()

	ctx, cancel := server.WithSignals(context.Background())
	defer cancel()

	db, err := repos.OpenSdetDB(cfg.DB.DSN)
	if err != nil {
		slog.Error("open db", "dsn", cfg.DB.DSN, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	app := handlers.NewSdetApp(handlers.NewSdetDeps(db, cfg), cfg)
	if err := server.Serve(ctx, app, cfg.App.HTTPAddr); err != nil {
		slog.Error("server", "err", err)
		os.Exit(1)
	}
}
