package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo-0125",
  "choices": [{"index": 0, "finish_reason": "stop", "logprobs": null,
    "message": {"role": "assistant", "content": "Hello!", "refusal": null}}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

type seenRequest struct {
	Path      string
	Auth      string
	RequestID string
	Body      map[string]any
}

func fakeOpenAI(t *testing.T, status int, body string) (*httptest.Server, chan seenRequest) {
	t.Helper()
	seen := make(chan seenRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		seen <- seenRequest{
			Path:      r.URL.Path,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-Id"),
			Body:      payload,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestOpenAIProviderGenerate(t *testing.T) {
	t.Setenv("HUNTBRIEF_OPENAI_KEY_TEAM", "sk-team")
	srv, seen := fakeOpenAI(t, http.StatusOK, completionBody)
	p := NewOpenAIProvider("team", "sk-default", srv.URL+"/v1/")

	ctx := WithRequestID(context.Background(), "req-1")
	resp, info, err := Generate(ctx, p, GenerateRequest{
		Operation:   "chat",
		System:      "You are a helpful assistant for Product Hunt queries.",
		Prompt:      "hi",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   200,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", resp.Text)
	assert.Equal(t, "gpt-3.5-turbo-0125", resp.Model)
	assert.Equal(t, Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, resp.Usage)
	assert.Equal(t, "openai", info.Name)
	assert.Equal(t, "team", info.Key)

	req := <-seen
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-team", req.Auth)
	assert.Equal(t, "req-1", req.RequestID)
	assert.Equal(t, "gpt-3.5-turbo", req.Body["model"])
	assert.EqualValues(t, 200, req.Body["max_tokens"])
	assert.EqualValues(t, 0.7, req.Body["temperature"])
	msgs := req.Body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAIProviderMissingKey(t *testing.T) {
	p := NewOpenAIProvider("nobody", "", "http://127.0.0.1:1/v1/")
	_, _, err := p.New(context.Background(), openai.ChatCompletionNewParams{Model: "gpt-4o-mini"})
	require.ErrorIs(t, err, ErrMissingKey)
	assert.Equal(t, ErrorConfig, ClassifyError(err))
}

func TestOpenAIProviderQuotaError(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusTooManyRequests,
		`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`)
	p := NewOpenAIProvider("", "sk-test", srv.URL+"/v1/")

	_, _, err := p.New(context.Background(), openai.ChatCompletionNewParams{
		Model:    "gpt-4o-mini",
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")},
	})
	require.Error(t, err)
	assert.Equal(t, ErrorQuota, ClassifyError(err))
}

func TestGroqProviderOverridesModel(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	srv, seen := fakeOpenAI(t, http.StatusOK, completionBody)
	p := NewGroqProvider("", srv.URL+"/openai/v1/", "llama-3.1-8b-instant")

	_, info, err := p.New(context.Background(), openai.ChatCompletionNewParams{
		Model:    "gpt-4o-mini",
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "groq", info.Name)

	req := <-seen
	assert.Equal(t, "/openai/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer gsk-test", req.Auth)
	assert.Equal(t, "llama-3.1-8b-instant", req.Body["model"])
}
