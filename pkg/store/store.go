// Package store provides named storage for encoded diagram documents.
//
// This package defines a small byte-blob interface with implementations
// for different backends:
//   - memory: in-process storage for tests and throwaway sessions
//   - file: a directory of document files for CLI usage
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage when documents need querying
//
// Stores hold encoded documents, not live models: callers encode with
// the codec package before Put and decode after Get. That keeps every
// backend a dumb byte store and the round-trip guarantees in one place.
//
// # Usage
//
//	st := store.NewMemoryStore()
//
//	// or, for the CLI
//	st, err := store.NewFileStore("") // ~/.local/share/inklet/documents
//
//	// or, for a deployment
//	st, err := store.NewRedisStore(ctx, store.RedisConfig{Addr: "localhost:6379"})
//
//	err = st.Put(ctx, "sketch", encoded)
//	rec, err := st.Get(ctx, "sketch")
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no document is stored under the
	// requested name.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidName is returned for names a backend cannot represent,
	// such as empty strings or path separators in the file store.
	ErrInvalidName = errors.New("invalid document name")
)

// Record is a stored document with its metadata.
type Record struct {
	Name     string    `json:"name" bson:"_id"`
	Data     []byte    `json:"data" bson:"data"`
	Modified time.Time `json:"modified" bson:"modified"`
}

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves the document stored under name.
	Get(ctx context.Context, name string) (*Record, error)

	// Put stores data under name, replacing any previous document.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes the document stored under name. Deleting an
	// unknown name returns [ErrNotFound].
	Delete(ctx context.Context, name string) error

	// List returns the stored document names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
