package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider serves any backend that speaks the OpenAI chat completions API.
// openai, groq and ollama differ only by base URL, key and default model.
type OpenAIProvider struct {
	name    string
	keyName string
	apiKey  string
	model   string
	client  openai.Client
}

type compatOptions struct {
	name    string
	keyName string
	apiKey  string
	baseURL string
	// model, when set, replaces the model the caller asked for.
	model string
}

func newCompatProvider(o compatOptions) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		option.WithRequestTimeout(60 * time.Second),
		// The Manager fails over instead of retrying one backend.
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(o.baseURL) != "" {
		opts = append(opts, option.WithBaseURL(o.baseURL))
	}
	return &OpenAIProvider{
		name:    o.name,
		keyName: o.keyName,
		apiKey:  o.apiKey,
		model:   o.model,
		client:  openai.NewClient(opts...),
	}
}

func NewOpenAIProvider(keyName, defaultKey, baseURL string) *OpenAIProvider {
	return newCompatProvider(compatOptions{
		name:    "openai",
		keyName: keyName,
		apiKey:  resolveKey("OPENAI", keyName, defaultKey),
		baseURL: baseURL,
	})
}

func NewGroqProvider(keyName, baseURL, model string) *OpenAIProvider {
	if strings.TrimSpace(model) == "" {
		model = "llama-3.1-8b-instant"
	}
	return newCompatProvider(compatOptions{
		name:    "groq",
		keyName: keyName,
		apiKey:  resolveKey("GROQ", keyName, os.Getenv("GROQ_API_KEY")),
		baseURL: baseURL,
		model:   model,
	})
}

// NewOllamaProvider talks to a local Ollama server, which ignores the key.
func NewOllamaProvider(baseURL, model string) *OpenAIProvider {
	if strings.TrimSpace(model) == "" {
		model = "llama3.1"
	}
	return newCompatProvider(compatOptions{
		name:    "ollama",
		keyName: "local",
		apiKey:  "ollama",
		baseURL: baseURL,
		model:   model,
	})
}

func (o *OpenAIProvider) Info() ProviderInfo {
	return ProviderInfo{Name: o.name, Model: o.model, Key: o.keyName}
}

func (o *OpenAIProvider) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, ProviderInfo, error) {
	info := o.Info()
	if o.apiKey == "" {
		return nil, info, fmt.Errorf("%s key missing for alias %q: %w", o.name, o.keyName, ErrMissingKey)
	}
	if o.model != "" {
		params.Model = shared.ChatModel(o.model)
	}
	info.Model = string(params.Model)

	completion, err := o.client.Chat.Completions.New(ctx, params, requestOptions(ctx)...)
	if err != nil {
		return nil, info, fmt.Errorf("%s chat completion: %w", o.name, err)
	}
	if len(completion.Choices) == 0 {
		return nil, info, fmt.Errorf("%s: %w", o.name, ErrNoChoices)
	}
	if completion.Model != "" {
		info.Model = completion.Model
	}
	return completion, info, nil
}

func requestOptions(ctx context.Context) []option.RequestOption {
	var opts []option.RequestOption
	if id := RequestID(ctx); id != "" {
		opts = append(opts, option.WithHeader("X-Request-Id", id))
	}
	return opts
}

// resolveKey prefers HUNTBRIEF_<PROVIDER>_KEY_<ALIAS> and falls back to the default key.
func resolveKey(provider, alias, fallback string) string {
	if alias != "" {
		k := os.Getenv("HUNTBRIEF_" + provider + "_KEY_" + strings.ToUpper(alias))
		if k != "" {
			return k
		}
	}
	return strings.TrimSpace(fallback)
}
