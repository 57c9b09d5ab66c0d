package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"huntbrief/internal/config"

	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

type NamedLLMProvider struct {
	Ref      ProviderRef
	Provider LLMProvider
}

// Manager is an LLMProvider that tries the configured backends in preference
// order and moves on when one is out of quota, rate limited, down or unkeyed.
type Manager struct {
	llmProviders []NamedLLMProvider
	logger       *zap.Logger
}

func NewManager(cfg config.Config, logger *zap.Logger) (*Manager, error) {
	named := make([]NamedLLMProvider, 0, 4)
	for _, ref := range ParseProviderList(cfg.LLMProviders) {
		p, err := buildProvider(ref, cfg)
		if err != nil {
			return nil, err
		}
		named = append(named, NamedLLMProvider{Ref: ref, Provider: p})
	}
	return NewManagerWith(logger, named...), nil
}

// NewManagerWith builds a Manager over already constructed providers.
func NewManagerWith(logger *zap.Logger, named ...NamedLLMProvider) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{llmProviders: named, logger: logger.Named("llm")}
	if len(m.llmProviders) == 0 {
		m.llmProviders = []NamedLLMProvider{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()}}
	}
	return m
}

func (m *Manager) Info() ProviderInfo {
	return m.llmProviders[m.PreferredLLMOrder()[0]].Provider.Info()
}

func (m *Manager) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, ProviderInfo, error) {
	var (
		lastErr  error
		lastInfo ProviderInfo
	)
	for _, i := range m.PreferredLLMOrder() {
		np := m.llmProviders[i]
		completion, info, err := np.Provider.New(ctx, params)
		if err == nil {
			return completion, info, nil
		}
		lastErr, lastInfo = err, info
		kind := ClassifyError(err)
		if ctx.Err() != nil || !shouldFailover(kind) {
			return nil, info, err
		}
		m.logger.Warn("llm provider failed, trying next",
			zap.String("provider", np.Ref.String()),
			zap.String("error_type", string(kind)),
			zap.Error(err),
		)
	}
	return nil, lastInfo, fmt.Errorf("all llm providers failed: %w", lastErr)
}

func (m *Manager) LLMCount() int {
	return len(m.llmProviders)
}

// PreferredLLMOrder lists provider indexes with mock last.
func (m *Manager) PreferredLLMOrder() []int {
	return preferredOrder(len(m.llmProviders), func(i int) string { return strings.ToLower(m.llmProviders[i].Ref.Name) })
}

func preferredOrder(n int, nameAt func(i int) string) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if nameAt(i) != "mock" {
			out = append(out, i)
		}
	}
	for i := 0; i < n; i++ {
		if nameAt(i) == "mock" {
			out = append(out, i)
		}
	}
	return out
}

func (m *Manager) FindLLMProviderByName(name string) (LLMProvider, ProviderRef, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return nil, ProviderRef{}, false
	}
	for i := range m.llmProviders {
		ref := m.llmProviders[i].Ref
		if ref.Name == target || strings.ToLower(ref.String()) == target {
			return m.llmProviders[i].Provider, ref, true
		}
	}
	return nil, ProviderRef{}, false
}

var errUnsupportedProvider = errors.New("unsupported provider")

func buildProvider(ref ProviderRef, cfg config.Config) (LLMProvider, error) {
	switch ref.Name {
	case "mock":
		return NewMockProvider(), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	case "groq":
		return NewGroqProvider(ref.KeyAlias, cfg.GroqBaseURL, cfg.GroqModel), nil
	case "ollama":
		return NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedProvider, ref.Raw)
	}
}
