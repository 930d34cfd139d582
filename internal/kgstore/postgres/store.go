// Package postgres provides an optional, pgvector-backed pre-filter for
// [kg.KnowledgeGraph.MostSimilarLocation]. It is never required: the
// in-memory linear Jaro-Winkler scan over every known location remains
// the canonical ranking pass (see spec §4.2), and this store only ever
// narrows the candidate set handed to that scan, never replaces it.
//
// Embeddings are produced locally by [Embed], a bag-of-character-shingles
// hash — no external embedding model is in scope for this agent — and
// stored in a single pgvector column, using a cosine-distance HNSW
// index over a bare (name, description, embedding, updated_at) table, since a
// location description has no conversational metadata to index
// alongside it.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// Dimensions is the fixed length of embeddings produced by [Embed]. It is
// independent of [Store]'s configured embeddingDimensions only in that
// Embed always returns a vector of this length; Store still validates the
// two agree at construction time.
const Dimensions = 256

const ddlLocationEmbeddings = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS location_embeddings (
    name        TEXT         PRIMARY KEY,
    description TEXT         NOT NULL,
    embedding   vector(%d)   NOT NULL,
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_location_embeddings_embedding
    ON location_embeddings USING hnsw (embedding vector_cosine_ops);
`

// Store is a pgvector-backed candidate pre-filter for discovered location
// descriptions. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
	dims int
}

// Open establishes a connection pool to the PostgreSQL database at dsn,
// registers pgvector types on every connection, and ensures the backing
// table and HNSW index exist. embeddingDimensions must equal [Dimensions];
// it is accepted as a parameter (rather than hardcoded) so callers can
// detect a configuration mismatch against [config.MemoryConfig] before any
// query is issued.
func Open(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	if embeddingDimensions != Dimensions {
		return nil, fmt.Errorf("kgstore/postgres: embedding_dimensions must be %d, got %d", Dimensions, embeddingDimensions)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("kgstore/postgres: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("kgstore/postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("kgstore/postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf(ddlLocationEmbeddings, embeddingDimensions)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("kgstore/postgres: migrate: %w", err)
	}

	return &Store{pool: pool, dims: embeddingDimensions}, nil
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Upsert embeds description and stores it under name, replacing any prior
// embedding for the same location name.
func (s *Store) Upsert(ctx context.Context, name, description string) error {
	vec := pgvector.NewVector(Embed(description))
	const q = `
		INSERT INTO location_embeddings (name, description, embedding, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE SET
		    description = EXCLUDED.description,
		    embedding   = EXCLUDED.embedding,
		    updated_at  = now()`
	if _, err := s.pool.Exec(ctx, q, name, description, vec); err != nil {
		return fmt.Errorf("kgstore/postgres: upsert %q: %w", name, err)
	}
	return nil
}

// NearestNames returns the topK location names whose stored embeddings are
// closest (cosine distance) to desc's embedding, nearest first.
func (s *Store) NearestNames(ctx context.Context, desc string, topK int) ([]string, error) {
	vec := pgvector.NewVector(Embed(desc))
	const q = `
		SELECT name
		FROM   location_embeddings
		ORDER  BY embedding <=> $1
		LIMIT  $2`

	rows, err := s.pool.Query(ctx, q, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("kgstore/postgres: nearest names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("kgstore/postgres: scan nearest names: %w", err)
	}
	return names, nil
}
