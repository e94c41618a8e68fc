// Package redisstore keeps catalog documents in Redis, one hash per
// collection with document ids as fields.
package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"promostore/internal/store"
)

const keyPrefix = "promostore:"

type Store struct {
	Client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{Client: client}
}

func collectionKey(collection string) string {
	return keyPrefix + collection
}

// Apply queues all ops on one MULTI/EXEC pipeline.
func (s *Store) Apply(ctx context.Context, ops []store.Op) error {
	if len(ops) == 0 {
		return nil
	}
	pipe := s.Client.TxPipeline()
	for _, op := range ops {
		switch op.Kind {
		case store.OpPut:
			pipe.HSet(ctx, collectionKey(op.Collection), op.ID, op.Data)
		case store.OpDelete:
			pipe.HDel(ctx, collectionKey(op.Collection), op.ID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Doc, error) {
	all, err := s.Client.HGetAll(ctx, collectionKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]store.Doc, 0, len(all))
	for id, data := range all {
		docs = append(docs, store.Doc{Collection: collection, ID: id, Data: []byte(data)})
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	data, err := s.Client.HGet(ctx, collectionKey(collection), id).Result()
	if err == redis.Nil {
		return store.Doc{}, store.ErrNotFound
	}
	if err != nil {
		return store.Doc{}, err
	}
	return store.Doc{Collection: collection, ID: id, Data: []byte(data)}, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, data []byte) error {
	return s.Client.HSet(ctx, collectionKey(collection), id, data).Err()
}
