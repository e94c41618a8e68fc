package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"promostore/internal/model"
	"promostore/internal/observability"
)

const (
	// ChunkSize is the number of products persisted per chunk document,
	// sized to stay well under the backing store's document limit.
	ChunkSize = 100
	// MaxOpsPerTx caps writes per transaction, below the store's hard
	// limit of 500 operations.
	MaxOpsPerTx = 450
)

// ChunkDoc is the persisted form of one catalog slice.
type ChunkDoc struct {
	Products  []model.Product `json:"products"`
	Api       string          `json:"api"`
	CreatedAt int64           `json:"createdAt"`
}

// Catalog persists vendor catalogs as fixed-size chunk documents and
// reassembles them on read.
type Catalog struct {
	Store DocStore

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func NewCatalog(s DocStore) *Catalog {
	return &Catalog{Store: s}
}

func (c *Catalog) clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// chunkID encodes vendor, zero-padded index and creation time, so chunks
// from different runs of the same vendor never collide and stale runs can
// be identified for deletion.
func chunkID(api string, index int, createdAt int64) string {
	return fmt.Sprintf("%s_%03d_%d", api, index, createdAt)
}

// Save replaces the persisted chunks for one vendor with the given
// products. An empty product list is a no-op that does NOT delete existing
// chunks: an empty fetch must never wipe previously good data. On non-empty
// input the old chunks are deleted and the new ones written, batched under
// the per-transaction cap; a batch failure aborts the remaining batches and
// is returned to the caller.
func (c *Catalog) Save(ctx context.Context, api string, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	existing, err := c.Store.List(ctx, ChunksCollection)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}

	var ops []Op
	for _, doc := range existing {
		if strings.HasPrefix(doc.ID, api+"_") {
			ops = append(ops, DeleteOp(ChunksCollection, doc.ID))
		}
	}

	createdAt := c.clock().UnixMilli()
	for i := 0; i < len(products); i += ChunkSize {
		end := i + ChunkSize
		if end > len(products) {
			end = len(products)
		}
		doc := ChunkDoc{Products: products[i:end], Api: api, CreatedAt: createdAt}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal chunk %d: %w", i/ChunkSize, err)
		}
		ops = append(ops, PutOp(ChunksCollection, chunkID(api, i/ChunkSize, createdAt), data))
	}

	for start := 0; start < len(ops); start += MaxOpsPerTx {
		end := start + MaxOpsPerTx
		if end > len(ops) {
			end = len(ops)
		}
		if err := c.Store.Apply(ctx, ops[start:end]); err != nil {
			return fmt.Errorf("commit batch %d: %w", start/MaxOpsPerTx, err)
		}
		for _, op := range ops[start:end] {
			if op.Kind == OpPut {
				observability.ChunkWritesTotal.Inc()
			}
		}
	}
	return nil
}

// LoadAll reads every chunk across all vendors, folds them oldest-first
// into a map keyed by vendor and product id (newer chunks win on
// collision), and returns the deduplicated catalog sorted by name. The
// last-write-wins fold keeps readers from ever seeing duplicates while a
// vendor's delete-then-rewrite is in flight.
func (c *Catalog) LoadAll(ctx context.Context) ([]model.Product, error) {
	docs, err := c.Store.List(ctx, ChunksCollection)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	chunks := make([]ChunkDoc, 0, len(docs))
	for _, doc := range docs {
		var chunk ChunkDoc
		if err := json.Unmarshal(doc.Data, &chunk); err != nil {
			return nil, fmt.Errorf("unmarshal chunk %s: %w", doc.ID, err)
		}
		chunks = append(chunks, chunk)
	}
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].CreatedAt < chunks[j].CreatedAt
	})

	byID := make(map[string]model.Product)
	order := make([]string, 0, len(chunks)*ChunkSize)
	for _, chunk := range chunks {
		for _, p := range chunk.Products {
			key := p.Api + ":" + p.ID
			if _, seen := byID[key]; !seen {
				order = append(order, key)
			}
			byID[key] = p
		}
	}

	out := make([]model.Product, 0, len(byID))
	for _, key := range order {
		out = append(out, byID[key])
	}
	model.SortByName(out)
	return out, nil
}
