// Package pgdocstore backs docstore.Store with a single Postgres JSONB table.
package pgdocstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sikad-ph/otpkit/docstore"
)

// Schema creates the documents table. Applied by the migrate subcommand.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    key        TEXT NOT NULL,
    doc        JSONB NOT NULL,
    PRIMARY KEY (collection, key)
);

CREATE INDEX IF NOT EXISTS documents_phone_idx
    ON documents (collection, (doc->>'phone'));
`

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, collection, key string) (docstore.Doc, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND key = $2`,
		collection, key).Scan(&raw)
	if err == pgx.ErrNoRows {
		return docstore.Doc{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Doc{}, fmt.Errorf("docstore get: %w", err)
	}
	doc := docstore.Doc{Key: key}
	if err := json.Unmarshal(raw, &doc.Fields); err != nil {
		return docstore.Doc{}, fmt.Errorf("docstore get: %w", err)
	}
	return doc, nil
}

func (s *Store) Set(ctx context.Context, collection, key string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore set: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, key, doc) VALUES ($1, $2, $3)
		ON CONFLICT (collection, key) DO UPDATE SET doc = EXCLUDED.doc`,
		collection, key, raw)
	if err != nil {
		return fmt.Errorf("docstore set: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore update: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents SET doc = doc || $3::jsonb
		WHERE collection = $1 AND key = $2`,
		collection, key, raw)
	if err != nil {
		return fmt.Errorf("docstore update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND key = $2`,
		collection, key)
	if err != nil {
		return fmt.Errorf("docstore delete: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection, field, equals string, limit int) ([]docstore.Doc, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT key, doc FROM documents
		WHERE collection = $1 AND doc->>$2 = $3
		ORDER BY key LIMIT $4`,
		collection, field, equals, limit)
	if err != nil {
		return nil, fmt.Errorf("docstore query: %w", err)
	}
	defer rows.Close()

	var out []docstore.Doc
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("docstore query: %w", err)
		}
		doc := docstore.Doc{Key: key}
		if err := json.Unmarshal(raw, &doc.Fields); err != nil {
			return nil, fmt.Errorf("docstore query: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore query: %w", err)
	}
	return out, nil
}
