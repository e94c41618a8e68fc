package store

import (
	"context"
	"errors"
)

// Collections used by the catalog service.
const (
	ChunksCollection = "catalog_chunks"
	MetaCollection   = "catalog_meta"
)

// ErrNotFound is returned by Get when a document does not exist.
var ErrNotFound = errors.New("store: document not found")

type OpKind int

const (
	OpPut OpKind = iota
	OpDelete
)

// Op is a single write against a document store.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       []byte
}

// Doc is one stored document.
type Doc struct {
	Collection string
	ID         string
	Data       []byte
}

// DocStore is the minimal document-store surface the catalog needs: batched
// writes applied in one transaction, whole-collection reads, and single-doc
// access for the refresh marker. Callers keep each Apply batch under the
// backend's per-transaction operation limit.
type DocStore interface {
	Apply(ctx context.Context, ops []Op) error
	List(ctx context.Context, collection string) ([]Doc, error)
	Get(ctx context.Context, collection, id string) (Doc, error)
	Put(ctx context.Context, collection, id string, data []byte) error
}

func PutOp(collection, id string, data []byte) Op {
	return Op{Kind: OpPut, Collection: collection, ID: id, Data: data}
}

func DeleteOp(collection, id string) Op {
	return Op{Kind: OpDelete, Collection: collection, ID: id}
}
