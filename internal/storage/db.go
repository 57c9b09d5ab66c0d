package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type DB struct {
	Pool *pgxpool.Pool

	schemaMu       sync.Mutex
	schemaPrepared bool
}

func NewDB(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS exchanges (
  exchange_id UUID PRIMARY KEY,
  question TEXT NOT NULL,
  question_hash TEXT NOT NULL,
  answer TEXT NOT NULL,
  response_type TEXT NOT NULL,
  tools_used JSONB NOT NULL DEFAULT '[]'::jsonb,
  provider_name TEXT,
  model TEXT,
  duration_ms BIGINT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_exchanges_question_hash ON exchanges(question_hash);

CREATE TABLE IF NOT EXISTS llm_calls (
  call_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  operation TEXT NOT NULL,
  exchange_id UUID,
  provider_name TEXT NOT NULL,
  model TEXT NOT NULL,
  request_id TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL CHECK (status IN ('ok','failed')),
  error_type TEXT,
  prompt_tokens BIGINT NOT NULL DEFAULT 0,
  completion_tokens BIGINT NOT NULL DEFAULT 0,
  latency_ms BIGINT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_llm_calls_created ON llm_calls(created_at DESC);

CREATE TABLE IF NOT EXISTS digests (
  digest_id UUID PRIMARY KEY,
  status TEXT NOT NULL CHECK (status IN ('running','completed','failed')),
  source TEXT,
  summary TEXT,
  products JSONB NOT NULL DEFAULT '[]'::jsonb,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables on first use. It is safe to call repeatedly.
func (d *DB) EnsureSchema(ctx context.Context) error {
	d.schemaMu.Lock()
	defer d.schemaMu.Unlock()

	if d.schemaPrepared {
		return nil
	}
	if _, err := d.Pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	d.schemaPrepared = true
	return nil
}
