package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

type GenerateRequest struct {
	Operation   string  `json:"operation"`
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
}

type GenerateResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// Generate runs one system+user chat completion without tools.
func Generate(ctx context.Context, p LLMProvider, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       shared.ChatModel(req.Model),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	completion, info, err := p.New(ctx, params)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("%s: %w", req.Operation, err)
	}
	if len(completion.Choices) == 0 {
		return GenerateResponse{}, info, fmt.Errorf("%s: %w", req.Operation, ErrNoChoices)
	}
	var usage Usage
	usage.Add(completion.Usage)
	model := completion.Model
	if model == "" {
		model = info.Model
	}
	return GenerateResponse{Text: completion.Choices[0].Message.Content, Model: model, Usage: usage}, info, nil
}
