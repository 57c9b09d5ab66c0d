package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"huntbrief/internal/models"
	"huntbrief/internal/util"

	"github.com/google/uuid"
)

type ExchangeRepo struct {
	db *DB
}

func NewExchangeRepo(db *DB) *ExchangeRepo {
	return &ExchangeRepo{db: db}
}

// Insert stores one question and answer and returns its id.
func (r *ExchangeRepo) Insert(ctx context.Context, e models.Exchange) (string, error) {
	if e.ExchangeID == "" {
		e.ExchangeID = uuid.NewString()
	}
	if e.ToolsUsed == nil {
		e.ToolsUsed = []string{}
	}
	toolsJSON, _ := json.Marshal(e.ToolsUsed)
	question := util.SanitizeText(e.Question)
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO exchanges (exchange_id, question, question_hash, answer, response_type, tools_used, provider_name, model, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, NULLIF($7,''), NULLIF($8,''), $9)`,
		e.ExchangeID, question, util.QuestionHash(question), util.SanitizeText(e.Answer), e.ResponseType,
		string(toolsJSON), e.ProviderName, e.Model, e.DurationMS,
	)
	if err != nil {
		return "", fmt.Errorf("insert exchange: %w", err)
	}
	return e.ExchangeID, nil
}

func (r *ExchangeRepo) ListRecent(ctx context.Context, limit int) ([]models.Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT exchange_id::text, question, question_hash, answer, response_type, tools_used,
       COALESCE(provider_name,''), COALESCE(model,''), duration_ms, created_at
FROM exchanges
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	out := make([]models.Exchange, 0)
	for rows.Next() {
		var (
			e         models.Exchange
			toolsJSON []byte
		)
		if err := rows.Scan(&e.ExchangeID, &e.Question, &e.QuestionHash, &e.Answer, &e.ResponseType, &toolsJSON,
			&e.ProviderName, &e.Model, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		if err := json.Unmarshal(toolsJSON, &e.ToolsUsed); err != nil {
			return nil, fmt.Errorf("decode exchange tools: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	return out, nil
}
