package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/nmorel/infection-backend/internal/config"
	"github.com/nmorel/infection-backend/internal/httpapi"
	"github.com/nmorel/infection-backend/internal/hub"
	"github.com/nmorel/infection-backend/internal/store"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres open failed", zap.Error(err))
		}
		st = pg
	} else {
		log.Warn("DATABASE_URL not set, running on the in-memory store")
		st = store.NewMemory()
	}

	ctx := context.Background()
	h := hub.NewHub(ctx, st, log)

	handler := httpapi.SetupRoutes(h, st, log)

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
