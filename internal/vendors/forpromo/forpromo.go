package forpromo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"promostore/internal/cache"
	"promostore/internal/model"
	"promostore/internal/observability"
	"promostore/internal/vendors"
)

const pageSize = 50

var httpClient = &http.Client{Timeout: 60 * time.Second}

type pageResponse struct {
	Meta struct {
		Pagination struct {
			TotalCount int `json:"total_count"`
		} `json:"pagination"`
	} `json:"meta"`
	Products []rawProduct `json:"products"`
}

// Config for the forpromo catalog API. RelayURL, when set, routes every page
// request through a CORS-bypass relay instead of calling the vendor
// directly; proxied deployments need it, production does not.
type Config struct {
	BaseURL  string
	APIKey   string
	RelayURL string
}

// Fetcher pages through the forpromo catalog. The upstream is slow and
// rate-sensitive, so pages are fetched one at a time behind a limiter and
// the whole result is cached for the configured TTL. This is the only
// vendor that goes through the cache.
type Fetcher struct {
	vendor.Status

	cfg      Config
	limiter  *rate.Limiter
	cache    *cache.Cache[[]model.Product]
	cacheTTL time.Duration
}

func New(cfg Config, c *cache.Cache[[]model.Product], cacheTTL time.Duration) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.forpromotional.net/v1"
	}
	return &Fetcher{
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func (f *Fetcher) Name() string { return model.APIForpromo }

func (f *Fetcher) Fetch(ctx context.Context) ([]model.Product, error) {
	f.Begin()
	missed := false
	products, err := f.cache.GetOrSet(ctx, cache.Key(model.APIForpromo, nil), f.cacheTTL,
		func(ctx context.Context) ([]model.Product, error) {
			missed = true
			return f.fetchAll(ctx)
		})
	if missed {
		observability.CacheMissesTotal.Inc()
	} else {
		observability.CacheHitsTotal.Inc()
	}
	f.Finish(err == nil)
	return products, err
}

// fetchAll fetches page 1 to learn the total count, then walks the
// remaining pages sequentially. A page-1 failure fails the whole fetch,
// so nothing gets cached and the vendor is marked down for the cycle;
// later page failures keep whatever was accumulated so far.
func (f *Fetcher) fetchAll(ctx context.Context) ([]model.Product, error) {
	first, err := f.fetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("first page: %w", err)
	}

	out := make([]model.Product, 0, first.Meta.Pagination.TotalCount)
	for _, raw := range first.Products {
		out = append(out, normalize(raw))
	}

	total := first.Meta.Pagination.TotalCount
	pages := (total + pageSize - 1) / pageSize
	for page := 2; page <= pages; page++ {
		resp, err := f.fetchPage(ctx, page)
		if err != nil {
			log.Printf("[forpromo] page %d/%d failed: %v", page, pages, err)
			break
		}
		for _, raw := range resp.Products {
			out = append(out, normalize(raw))
		}
	}
	return out, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, page int) (*pageResponse, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	target := fmt.Sprintf("%s/products?page=%d&page_size=%d", f.cfg.BaseURL, page, pageSize)
	if f.cfg.RelayURL != "" {
		target = f.cfg.RelayURL + url.QueryEscape(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for page %d: %w", page, err)
	}
	req.Header.Set("Accept", "application/json")
	if f.cfg.APIKey != "" {
		req.Header.Set("x-api-key", f.cfg.APIKey)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forpromo status %d on page %d", resp.StatusCode, page)
	}

	var result pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}
	return &result, nil
}
