package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	httpapi "storefront/internal/http"
	"storefront/internal/persistence"
	"storefront/internal/repository"
	"storefront/internal/service"

	_ "storefront/docs"
)

// @title Storefront API
// @version 1.0
// @description In-memory customer/product catalog with an order workflow and JSON snapshots.
// @BasePath /api/v1
func main() {
	cfg := config.Load()

	store := repository.NewMemoryStore()
	catalogSvc := service.NewCatalogService(store, store)
	ordersSvc := service.NewOrderService(store, store, store)
	snapshots := persistence.NewFileStore(cfg.SnapshotPath)

	if err := snapshots.Load(context.Background(), store); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("no snapshot at %s, starting empty", cfg.SnapshotPath)
		} else {
			log.Printf("snapshot load failed, starting empty: %v", err)
		}
	} else {
		log.Printf("state restored from %s", cfg.SnapshotPath)
	}

	srv := httpapi.NewServer(catalogSvc, ordersSvc, store, snapshots)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := snapshots.Save(context.Background(), store); err != nil {
		log.Printf("snapshot save failed: %v", err)
	} else {
		log.Printf("state saved to %s", cfg.SnapshotPath)
	}
}
