// Package memstore is an in-memory DocStore used by tests and by local
// development when no database is configured.
package memstore

import (
	"context"
	"sort"
	"sync"

	"promostore/internal/store"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte // collection -> id -> doc
}

func New() *Store {
	return &Store{data: make(map[string]map[string][]byte)}
}

func (s *Store) Apply(_ context.Context, ops []store.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		coll := s.data[op.Collection]
		if coll == nil {
			coll = make(map[string][]byte)
			s.data[op.Collection] = coll
		}
		switch op.Kind {
		case store.OpPut:
			coll[op.ID] = append([]byte(nil), op.Data...)
		case store.OpDelete:
			delete(coll, op.ID)
		}
	}
	return nil
}

func (s *Store) List(_ context.Context, collection string) ([]store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll := s.data[collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]store.Doc, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, store.Doc{
			Collection: collection,
			ID:         id,
			Data:       append([]byte(nil), coll[id]...),
		})
	}
	return docs, nil
}

func (s *Store) Get(_ context.Context, collection, id string) (store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[collection][id]
	if !ok {
		return store.Doc{}, store.ErrNotFound
	}
	return store.Doc{Collection: collection, ID: id, Data: append([]byte(nil), data...)}, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, data []byte) error {
	return s.Apply(ctx, []store.Op{store.PutOp(collection, id, data)})
}
