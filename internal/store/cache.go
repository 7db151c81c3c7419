package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingCache persists embeddings across runs, keyed by model name and
// content hash. The category descriptions are embedded on every startup;
// without the cache that means one provider round trip per process, with it
// the vectors are served locally after the first run.
type EmbeddingCache interface {
	Get(ctx context.Context, model, hash string) (pgvector.Vector, bool, error)
	Put(ctx context.Context, model, hash string, vec pgvector.Vector) error
	Ping(ctx context.Context) error
	Close() error
}

// SQLiteEmbeddingCache is the default EmbeddingCache implementation, a single
// SQLite file next to the config.
type SQLiteEmbeddingCache struct {
	db *sql.DB
}

const createEmbeddingsTable = `
CREATE TABLE IF NOT EXISTS embeddings (
	model_name   TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	vector       TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	PRIMARY KEY (model_name, content_hash)
);`

func NewSQLiteEmbeddingCache(path string) (*SQLiteEmbeddingCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache %s: %w", path, err)
	}
	if _, err := db.Exec(createEmbeddingsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("init embedding cache schema: %w", err)
	}
	return &SQLiteEmbeddingCache{db: db}, nil
}

func (c *SQLiteEmbeddingCache) Get(ctx context.Context, model, hash string) (pgvector.Vector, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE model_name = ? AND content_hash = ?`,
		model, hash).Scan(&raw)
	if err == sql.ErrNoRows {
		return pgvector.Vector{}, false, nil
	}
	if err != nil {
		return pgvector.Vector{}, false, fmt.Errorf("embedding cache get: %w", err)
	}

	var values []float32
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return pgvector.Vector{}, false, fmt.Errorf("embedding cache entry is corrupt: %w", err)
	}
	return pgvector.NewVector(values), true, nil
}

func (c *SQLiteEmbeddingCache) Put(ctx context.Context, model, hash string, vec pgvector.Vector) error {
	raw, err := json.Marshal(vec.Slice())
	if err != nil {
		return fmt.Errorf("embedding cache put: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (model_name, content_hash, vector, created_at) VALUES (?, ?, ?, ?)`,
		model, hash, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("embedding cache put: %w", err)
	}
	return nil
}

func (c *SQLiteEmbeddingCache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLiteEmbeddingCache) Close() error {
	return c.db.Close()
}

var _ EmbeddingCache = (*SQLiteEmbeddingCache)(nil)
