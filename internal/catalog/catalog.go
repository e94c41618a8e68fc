package catalog

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"promostore/internal/model"
	"promostore/internal/observability"
	"promostore/internal/store"
	"promostore/internal/vendors"
)

const (
	// settlePoll is how often fetcher loading flags are re-checked after
	// the join, in case a fetcher clears its flag asynchronously. Merging
	// never starts while any fetcher still reports itself loading.
	settlePoll = 50 * time.Millisecond

	saveRetryBackoff = 500 * time.Millisecond
)

// Service orchestrates the full catalog refresh cycle: staleness check,
// concurrent vendor fan-out, merge, chunked persistence and the read path
// the storefront consumes.
type Service struct {
	Fetchers []vendor.Fetcher
	Catalog  *store.Catalog
	Oracle   *store.Oracle
}

func New(fetchers []vendor.Fetcher, catalog *store.Catalog, oracle *store.Oracle) *Service {
	return &Service{Fetchers: fetchers, Catalog: catalog, Oracle: oracle}
}

// GetAllProducts returns the persisted catalog: merged across vendors,
// deduplicated and name-sorted.
func (s *Service) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return s.Catalog.LoadAll(ctx)
}

// GetLastUpdate returns the last refresh timestamp, zero when none exists.
func (s *Service) GetLastUpdate(ctx context.Context) (time.Time, error) {
	return s.Oracle.LastUpdate(ctx)
}

// VendorStatus is a point-in-time snapshot of one fetcher's flags.
type VendorStatus struct {
	Name      string `json:"name"`
	Loading   bool   `json:"loading"`
	Succeeded bool   `json:"succeeded"`
}

func (s *Service) VendorStatuses() []VendorStatus {
	out := make([]VendorStatus, 0, len(s.Fetchers))
	for _, f := range s.Fetchers {
		out = append(out, VendorStatus{Name: f.Name(), Loading: f.Loading(), Succeeded: f.Succeeded()})
	}
	return out
}

// Refresh serves the catalog, refreshing it first when due. Only privileged
// callers may trigger a live refresh; everyone else reads the persisted
// snapshot regardless of staleness. force skips the staleness check but
// still requires privilege.
func (s *Service) Refresh(ctx context.Context, privileged, force bool) ([]model.Product, error) {
	if !privileged {
		return s.Catalog.LoadAll(ctx)
	}

	if !force {
		stale, err := s.Oracle.IsStale(ctx)
		if err != nil {
			return nil, fmt.Errorf("staleness check: %w", err)
		}
		if !stale {
			return s.Catalog.LoadAll(ctx)
		}
	}
	return s.refresh(ctx)
}

// refresh runs one full cycle. A vendor failure degrades that vendor to an
// empty contribution; only persistence errors abort the cycle.
func (s *Service) refresh(ctx context.Context) ([]model.Product, error) {
	cycle := uuid.New().String()[:8]
	observability.RefreshCyclesTotal.Inc()
	log.Printf("[refresh %s] starting, %d vendors", cycle, len(s.Fetchers))

	results := make([][]model.Product, len(s.Fetchers))
	var wg sync.WaitGroup
	for i, f := range s.Fetchers {
		wg.Add(1)
		go func(i int, f vendor.Fetcher) {
			defer wg.Done()
			start := time.Now()
			products, err := f.Fetch(ctx)
			if err != nil {
				log.Printf("[refresh %s] vendor %s failed: %v", cycle, f.Name(), err)
				observability.VendorFetchTotal.WithLabelValues(f.Name(), "error").Inc()
				results[i] = nil
				return
			}
			observability.VendorFetchTotal.WithLabelValues(f.Name(), "ok").Inc()
			observability.VendorFetchSeconds.WithLabelValues(f.Name()).Observe(time.Since(start).Seconds())
			results[i] = products
		}(i, f)
	}
	wg.Wait()
	if err := s.waitSettled(ctx); err != nil {
		return nil, err
	}

	merged := make([]model.Product, 0)
	for _, r := range results {
		merged = append(merged, r...)
	}
	model.SortByName(merged)
	log.Printf("[refresh %s] merged %d products", cycle, len(merged))

	for i, f := range s.Fetchers {
		if err := s.saveWithRetry(ctx, f.Name(), results[i]); err != nil {
			return nil, fmt.Errorf("persist %s: %w", f.Name(), err)
		}
	}
	if err := s.Oracle.MarkRefreshed(ctx); err != nil {
		return nil, fmt.Errorf("mark refreshed: %w", err)
	}

	return s.Catalog.LoadAll(ctx)
}

// waitSettled blocks until no fetcher reports itself loading.
func (s *Service) waitSettled(ctx context.Context) error {
	for {
		settled := true
		for _, f := range s.Fetchers {
			if f.Loading() {
				settled = false
				break
			}
		}
		if settled {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settlePoll):
		}
	}
}

// saveWithRetry retries a failed vendor save once before giving up, since a
// batch failure mid-save can leave that vendor's slice partially deleted.
func (s *Service) saveWithRetry(ctx context.Context, api string, products []model.Product) error {
	err := s.Catalog.Save(ctx, api, products)
	if err == nil {
		return nil
	}
	log.Printf("[persist %s] save failed, retrying once: %v", api, err)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(saveRetryBackoff):
	}
	return s.Catalog.Save(ctx, api, products)
}
