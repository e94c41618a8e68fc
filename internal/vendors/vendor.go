package vendor

import (
	"context"
	"sync/atomic"

	"promostore/internal/model"
)

// Fetcher pulls one vendor's full catalog and maps it into the common
// product shape. Implementations report transient state through Loading and
// Succeeded so the orchestrator and the UI can poll them.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Product, error)
	Loading() bool
	Succeeded() bool
}

// Status holds the observable fetch flags shared by all vendor fetchers.
// Embed it and bracket Fetch with Begin/Finish.
type Status struct {
	loading   atomic.Bool
	succeeded atomic.Bool
}

func (s *Status) Begin() {
	s.loading.Store(true)
}

func (s *Status) Finish(ok bool) {
	s.succeeded.Store(ok)
	s.loading.Store(false)
}

func (s *Status) Loading() bool   { return s.loading.Load() }
func (s *Status) Succeeded() bool { return s.succeeded.Load() }
