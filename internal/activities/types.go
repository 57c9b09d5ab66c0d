package activities

import (
	"huntbrief/internal/feed"
	"huntbrief/internal/models"
	"huntbrief/internal/sentiment"
)

type FetchTrendingInput struct {
	Limit int `json:"limit"`
}

type FetchTrendingOutput struct {
	Products []feed.Product `json:"products"`
	Source   string         `json:"source"`
}

type FetchDetailsInput struct {
	Name string `json:"name"`
}

type FetchDetailsOutput struct {
	Product feed.Product `json:"product"`
}

type AnalyzeCommentsInput struct {
	Product  string              `json:"product"`
	Comments []sentiment.Comment `json:"comments"`
}

type AnalyzeCommentsOutput struct {
	Counts      sentiment.Counts `json:"counts"`
	Score       int              `json:"score"`
	Summary     string           `json:"summary"`
	TopComments []string         `json:"top_comments"`
}

type LLMGenerateInput struct {
	Operation   string  `json:"operation"`
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	ProviderRef string  `json:"provider_ref,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
}

type LLMGenerateOutput struct {
	Text             string `json:"text"`
	ProviderName     string `json:"provider_name"`
	Model            string `json:"model"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	LatencyMS        int64  `json:"latency_ms"`
}

type LogLLMCallInput struct {
	Operation        string `json:"operation"`
	ProviderName     string `json:"provider_name"`
	Model            string `json:"model"`
	RequestID        string `json:"request_id"`
	Status           string `json:"status"`
	ErrorType        string `json:"error_type,omitempty"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	LatencyMS        int64  `json:"latency_ms"`
}

type SaveDigestInput struct {
	Digest models.Digest `json:"digest"`
}
