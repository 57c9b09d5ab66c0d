package providers

import (
	"context"

	"github.com/openai/openai-go"
)

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

func (u *Usage) Add(c openai.CompletionUsage) {
	u.PromptTokens += c.PromptTokens
	u.CompletionTokens += c.CompletionTokens
	u.TotalTokens += c.TotalTokens
}

// LLMProvider runs chat completions. The returned info names the backend
// that served the call, which differs from Info() for a failover Manager.
type LLMProvider interface {
	Info() ProviderInfo
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, ProviderInfo, error)
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID tags outgoing LLM calls with the inbound request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
