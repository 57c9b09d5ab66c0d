package storage

import (
	"context"
	"fmt"
)

type LLMCallRecord struct {
	CallID           string
	Operation        string
	ExchangeID       string
	ProviderName     string
	Model            string
	RequestID        string
	Status           string
	ErrorType        string
	PromptTokens     int64
	CompletionTokens int64
	LatencyMS        int64
}

type LLMAuditRepo struct {
	db *DB
}

func NewLLMAuditRepo(db *DB) *LLMAuditRepo {
	return &LLMAuditRepo{db: db}
}

func (r *LLMAuditRepo) Insert(ctx context.Context, rec LLMCallRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO llm_calls(call_id, operation, exchange_id, provider_name, model, request_id, status, error_type, prompt_tokens, completion_tokens, latency_ms)
VALUES (COALESCE(NULLIF($1,'')::uuid, gen_random_uuid()), $2, NULLIF($3,'')::uuid, $4, $5, $6, $7, NULLIF($8,''), $9, $10, $11)`,
		rec.CallID, rec.Operation, rec.ExchangeID, rec.ProviderName, rec.Model, rec.RequestID, rec.Status, rec.ErrorType,
		rec.PromptTokens, rec.CompletionTokens, rec.LatencyMS)
	if err != nil {
		return fmt.Errorf("insert llm call: %w", err)
	}
	return nil
}
