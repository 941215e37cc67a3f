package docstore

import (
	"context"
	"errors"
)

var ErrEmptyID = errors.New("document id empty")

// Record is a single encoded document, as stored by the backend.
type Record []byte

// Store is a remote document store, organized as collections of documents keyed by id.
// Records returned by List are ordered by document id.
// Deleting a missing document is not an error.
type Store interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Put(ctx context.Context, collection, id string, record Record) error
	Delete(ctx context.Context, collection, id string) error
}

// DocumentKey identifies one document across all collections.
func DocumentKey(collection, id string) string {
	return collection + "/" + id
}
