package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"promostore/internal/cache"
	"promostore/internal/catalog"
	"promostore/internal/config"
	"promostore/internal/db"
	"promostore/internal/model"
	"promostore/internal/store"
	"promostore/internal/store/memstore"
	"promostore/internal/store/pgstore"
	"promostore/internal/store/redisstore"
	"promostore/internal/vendors"
	"promostore/internal/vendors/cdopromo"
	"promostore/internal/vendors/dvela"
	"promostore/internal/vendors/forpromo"
	"promostore/internal/vendors/innova"
)

// Build wires the document store, the vendor fetchers and the catalog
// service from config. The returned cleanup releases connections and stops
// the cache sweep.
func Build(ctx context.Context, cfg *config.Config) (*catalog.Service, func(), error) {
	docStore, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	productCache := cache.New[[]model.Product](cfg.CacheTTL, cfg.CacheMaxItems, cfg.CacheTTL)
	cleanup := func() {
		productCache.Stop()
		closeStore()
	}

	fetchers := []vendor.Fetcher{
		forpromo.New(forpromo.Config{
			BaseURL:  cfg.ForpromoBaseURL,
			APIKey:   cfg.ForpromoAPIKey,
			RelayURL: cfg.ForpromoRelayURL,
		}, productCache, cfg.CacheTTL),
		cdopromo.New(cdopromo.Config{
			BaseURL:  cfg.CdopromoBaseURL,
			User:     cfg.CdopromoUser,
			Password: cfg.CdopromoPassword,
		}),
		dvela.New(dvela.Config{
			BaseURL: cfg.DvelaBaseURL,
			Token:   cfg.DvelaToken,
		}),
		innova.New(innova.Config{BaseURL: cfg.InnovaBaseURL}),
	}

	svc := catalog.New(fetchers, store.NewCatalog(docStore), store.NewOracle(docStore))
	return svc, cleanup, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (store.DocStore, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pgstore.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return pgstore.New(pool), pool.Close, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		return redisstore.New(client), func() { client.Close() }, nil
	case "memory":
		return memstore.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
