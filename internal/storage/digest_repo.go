package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"huntbrief/internal/models"

	"github.com/jackc/pgx/v5"
)

type DigestRepo struct {
	db *DB
}

func NewDigestRepo(db *DB) *DigestRepo {
	return &DigestRepo{db: db}
}

// Upsert writes the digest. Fields the update leaves empty keep their
// stored values.
func (r *DigestRepo) Upsert(ctx context.Context, d models.Digest) error {
	if d.Products == nil {
		d.Products = []models.DigestProduct{}
	}
	productsJSON, err := json.Marshal(d.Products)
	if err != nil {
		return fmt.Errorf("encode digest products: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO digests (digest_id, status, source, summary, products)
VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5::jsonb)
ON CONFLICT (digest_id)
DO UPDATE SET
  status = EXCLUDED.status,
  source = COALESCE(EXCLUDED.source, digests.source),
  summary = COALESCE(EXCLUDED.summary, digests.summary),
  products = CASE WHEN jsonb_array_length(EXCLUDED.products) > 0 THEN EXCLUDED.products ELSE digests.products END,
  updated_at = NOW()`,
		d.DigestID, d.Status, d.Source, d.Summary, string(productsJSON))
	if err != nil {
		return fmt.Errorf("upsert digest: %w", err)
	}
	return nil
}

func (r *DigestRepo) Get(ctx context.Context, digestID string) (models.Digest, error) {
	var (
		d            models.Digest
		productsJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT digest_id::text, status, COALESCE(source,''), COALESCE(summary,''), products, created_at, updated_at
FROM digests WHERE digest_id=$1`, digestID).
		Scan(&d.DigestID, &d.Status, &d.Source, &d.Summary, &productsJSON, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Digest{}, fmt.Errorf("digest %s: %w", digestID, ErrNotFound)
	}
	if err != nil {
		return models.Digest{}, fmt.Errorf("get digest: %w", err)
	}
	if err := json.Unmarshal(productsJSON, &d.Products); err != nil {
		return models.Digest{}, fmt.Errorf("decode digest products: %w", err)
	}
	return d, nil
}
