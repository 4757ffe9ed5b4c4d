// Package docstore is a minimal schemaless document store: named collections
// of JSON objects addressed by string key, with a single equality query. It
// is deliberately small; the service only ever looks up users by phone and
// appends alert records.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Update when no document exists at the
// given collection and key.
var ErrNotFound = errors.New("docstore: document not found")

// Doc is one stored document with its key.
type Doc struct {
	Key    string
	Fields map[string]any
}

type Store interface {
	// Get fetches one document or ErrNotFound.
	Get(ctx context.Context, collection, key string) (Doc, error)
	// Set writes the full document, creating or replacing it.
	Set(ctx context.Context, collection, key string, fields map[string]any) error
	// Update merges fields into an existing document; ErrNotFound if absent.
	Update(ctx context.Context, collection, key string, fields map[string]any) error
	Delete(ctx context.Context, collection, key string) error
	// Query returns up to limit documents whose field equals the given string.
	Query(ctx context.Context, collection, field, equals string, limit int) ([]Doc, error)
}
