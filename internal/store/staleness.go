package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const lastUpdateID = "lastUpdate"

type markerDoc struct {
	UpdatedAt string `json:"updatedAt"`
}

// Oracle decides whether the persisted catalog is due for a live refresh.
// Staleness is calendar-day granularity in local time, not a rolling TTL:
// a marker written at 23:59 is stale two minutes later, one written at
// 04:00 holds for the rest of the day.
type Oracle struct {
	Store DocStore

	mu     sync.Mutex
	cached time.Time

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func NewOracle(s DocStore) *Oracle {
	return &Oracle{Store: s}
}

func (o *Oracle) clock() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// LastUpdate returns the marker timestamp, or the zero time when no
// refresh has ever been recorded.
func (o *Oracle) LastUpdate(ctx context.Context) (time.Time, error) {
	o.mu.Lock()
	cached := o.cached
	o.mu.Unlock()
	if !cached.IsZero() {
		return cached, nil
	}

	doc, err := o.Store.Get(ctx, MetaCollection, lastUpdateID)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read marker: %w", err)
	}

	var marker markerDoc
	if err := json.Unmarshal(doc.Data, &marker); err != nil {
		return time.Time{}, fmt.Errorf("unmarshal marker: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, marker.UpdatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse marker: %w", err)
	}

	o.mu.Lock()
	o.cached = ts
	o.mu.Unlock()
	return ts, nil
}

// IsStale is true when no marker exists or the marker's local calendar day
// differs from today. Read errors propagate; callers decide policy.
func (o *Oracle) IsStale(ctx context.Context) (bool, error) {
	last, err := o.LastUpdate(ctx)
	if err != nil {
		return false, err
	}
	if last.IsZero() {
		return true, nil
	}
	return !sameDay(last.Local(), o.clock().Local()), nil
}

// MarkRefreshed writes the current timestamp to the store and keeps a
// fast-path copy in process, so repeated staleness checks skip the round
// trip.
func (o *Oracle) MarkRefreshed(ctx context.Context) error {
	now := o.clock()
	data, err := json.Marshal(markerDoc{UpdatedAt: now.Format(time.RFC3339)})
	if err != nil {
		return err
	}
	if err := o.Store.Put(ctx, MetaCollection, lastUpdateID, data); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	o.mu.Lock()
	o.cached = now
	o.mu.Unlock()
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
