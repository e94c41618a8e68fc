// Package pgstore keeps catalog documents in a single Postgres table with a
// jsonb payload, one row per document.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"promostore/internal/store"
)

// Schema creates the documents table. Exported so one-shot tooling can run
// it over a plain database/sql handle.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	PRIMARY KEY (collection, id)
)`

type Store struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// EnsureSchema creates the documents table when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}

// Apply runs all ops inside one transaction using a pgx batch, so a batch
// either commits whole or not at all.
func (s *Store) Apply(ctx context.Context, ops []store.Op) error {
	if len(ops) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, op := range ops {
		switch op.Kind {
		case store.OpPut:
			batch.Queue(`
				INSERT INTO documents (collection, id, data)
				VALUES ($1, $2, $3)
				ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
			`, op.Collection, op.ID, op.Data)
		case store.OpDelete:
			batch.Queue(`DELETE FROM documents WHERE collection = $1 AND id = $2`, op.Collection, op.ID)
		}
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for range ops {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Doc, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, data FROM documents WHERE collection = $1 ORDER BY id
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []store.Doc
	for rows.Next() {
		doc := store.Doc{Collection: collection}
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	doc := store.Doc{Collection: collection, ID: id}
	err := s.Pool.QueryRow(ctx, `
		SELECT data FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&doc.Data)
	if err == pgx.ErrNoRows {
		return store.Doc{}, store.ErrNotFound
	}
	if err != nil {
		return store.Doc{}, err
	}
	return doc, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, data []byte) error {
	return s.Apply(ctx, []store.Op{store.PutOp(collection, id, data)})
}
