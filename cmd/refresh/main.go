package main

import (
	"context"
	"flag"
	"log"
	"time"

	"promostore/internal/app"
	"promostore/internal/config"
	"promostore/internal/db"
	"promostore/internal/store/pgstore"
)

// go run cmd/refresh/main.go            refresh only when stale
// go run cmd/refresh/main.go -force     refresh unconditionally
func main() {
	force := flag.Bool("force", false, "refresh even when the catalog is not stale")
	timeout := flag.Duration("timeout", 15*time.Minute, "overall refresh deadline")
	flag.Parse()

	cfg := config.Load()

	// Bootstrap the schema over a plain handle before the pool comes up.
	if cfg.StoreBackend == "postgres" {
		sqlDB, err := db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		if _, err := sqlDB.Exec(pgstore.Schema); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc, cleanup, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("wiring failed: %v", err)
	}
	defer cleanup()

	products, err := svc.Refresh(ctx, true, *force)
	if err != nil {
		log.Fatalf("refresh failed: %v", err)
	}
	log.Printf("refresh done, %d products persisted", len(products))
}
