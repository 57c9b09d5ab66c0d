package providers

import (
	"context"
	"errors"
	"testing"

	"huntbrief/internal/config"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLLM struct {
	name  string
	err   error
	calls int
}

func (s *stubLLM) Info() ProviderInfo { return ProviderInfo{Name: s.name, Model: s.name + "-model"} }

func (s *stubLLM) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, ProviderInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.Info(), s.err
	}
	return &openai.ChatCompletion{Model: s.name + "-model"}, s.Info(), nil
}

func named(name string, p LLMProvider) NamedLLMProvider {
	return NamedLLMProvider{Ref: ProviderRef{Raw: name, Name: name}, Provider: p}
}

func TestManagerFailsOverOnQuota(t *testing.T) {
	first := &stubLLM{name: "openai", err: errors.New("insufficient_quota")}
	second := &stubLLM{name: "groq"}
	m := NewManagerWith(zap.NewNop(), named("openai", first), named("groq", second))

	completion, info, err := m.New(context.Background(), openai.ChatCompletionNewParams{})
	require.NoError(t, err)
	assert.Equal(t, "groq", info.Name)
	assert.Equal(t, "groq-model", completion.Model)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestManagerStopsOnPermanentError(t *testing.T) {
	first := &stubLLM{name: "openai", err: errors.New("400 bad request: invalid tools")}
	second := &stubLLM{name: "mock"}
	m := NewManagerWith(zap.NewNop(), named("openai", first), named("mock", second))

	_, info, err := m.New(context.Background(), openai.ChatCompletionNewParams{})
	require.Error(t, err)
	assert.Equal(t, "openai", info.Name)
	assert.Zero(t, second.calls)
}

func TestManagerPutsMockLast(t *testing.T) {
	mock := &stubLLM{name: "mock"}
	real := &stubLLM{name: "openai"}
	m := NewManagerWith(zap.NewNop(), named("mock", mock), named("openai", real))

	assert.Equal(t, []int{1, 0}, m.PreferredLLMOrder())
	assert.Equal(t, "openai", m.Info().Name)

	_, info, err := m.New(context.Background(), openai.ChatCompletionNewParams{})
	require.NoError(t, err)
	assert.Equal(t, "openai", info.Name)
	assert.Zero(t, mock.calls)
}

func TestManagerAllFail(t *testing.T) {
	a := &stubLLM{name: "openai", err: ErrMissingKey}
	b := &stubLLM{name: "groq", err: errors.New("503 service unavailable")}
	m := NewManagerWith(zap.NewNop(), named("openai", a), named("groq", b))

	_, _, err := m.New(context.Background(), openai.ChatCompletionNewParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all llm providers failed")
	assert.Equal(t, ErrorTransient, ClassifyError(err))
}

func TestNewManagerFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LLMProviders = "openai:none|mock"
	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 2, m.LLMCount())

	p, ref, ok := m.FindLLMProviderByName("openai:none")
	require.True(t, ok)
	assert.Equal(t, "none", ref.KeyAlias)
	assert.Equal(t, "openai", p.Info().Name)

	cfg.LLMProviders = "claude"
	_, err = NewManager(cfg, nil)
	require.ErrorIs(t, err, errUnsupportedProvider)
}

func TestManagerFallsBackToMockWithoutKeys(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAIAPIKey = ""
	cfg.LLMProviders = "openai:unset-alias|mock"
	m, err := NewManager(cfg, zap.NewNop())
	require.NoError(t, err)

	resp, info, err := Generate(context.Background(), m, GenerateRequest{Operation: "chat", Prompt: "hello", Model: "gpt-3.5-turbo"})
	require.NoError(t, err)
	assert.Equal(t, "mock", info.Name)
	assert.NotEmpty(t, resp.Text)
}
