package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"huntbrief/internal/config"
	"huntbrief/internal/feed"
	"huntbrief/internal/models"
	"huntbrief/internal/providers"
	"huntbrief/internal/sentiment"
	"huntbrief/internal/storage"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"
)

// TrendingSource is a feed that can say whether an answer came from the live
// API or the mock data.
type TrendingSource interface {
	feed.Source
	TrendingFrom(ctx context.Context, limit int) ([]feed.Product, feed.Origin, error)
}

type DigestStore interface {
	Upsert(ctx context.Context, d models.Digest) error
}

type CallLogger interface {
	Insert(ctx context.Context, rec storage.LLMCallRecord) error
}

type Activities struct {
	cfg       config.Config
	source    TrendingSource
	digests   DigestStore
	audit     CallLogger
	providers *providers.Manager
	logger    *zap.Logger
}

func New(cfg config.Config, source TrendingSource, digests DigestStore, audit CallLogger, pm *providers.Manager, logger *zap.Logger) *Activities {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activities{
		cfg:       cfg,
		source:    source,
		digests:   digests,
		audit:     audit,
		providers: pm,
		logger:    logger.Named("activities"),
	}
}

// NewFromDB wires the activities to Postgres and the configured feed and models.
func NewFromDB(cfg config.Config, db *storage.DB, logger *zap.Logger) (*Activities, error) {
	pm, err := providers.NewManager(cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(cfg, feed.NewSource(cfg, logger), storage.NewDigestRepo(db), storage.NewLLMAuditRepo(db), pm, logger), nil
}

func (a *Activities) FetchTrendingActivity(ctx context.Context, in FetchTrendingInput) (FetchTrendingOutput, error) {
	products, origin, err := a.source.TrendingFrom(ctx, in.Limit)
	if err != nil {
		return FetchTrendingOutput{}, fmt.Errorf("fetch trending: %w", err)
	}
	return FetchTrendingOutput{Products: products, Source: string(origin)}, nil
}

func (a *Activities) FetchDetailsActivity(ctx context.Context, in FetchDetailsInput) (FetchDetailsOutput, error) {
	p, err := a.source.Details(ctx, in.Name)
	if errors.Is(err, feed.ErrProductNotFound) {
		return FetchDetailsOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), "ProductNotFound", err)
	}
	if err != nil {
		return FetchDetailsOutput{}, fmt.Errorf("fetch details for %q: %w", in.Name, err)
	}
	return FetchDetailsOutput{Product: p}, nil
}

func (a *Activities) AnalyzeCommentsActivity(ctx context.Context, in AnalyzeCommentsInput) (AnalyzeCommentsOutput, error) {
	_ = ctx
	r := sentiment.Analyze(in.Product, in.Comments)
	return AnalyzeCommentsOutput{
		Counts:      r.Counts,
		Score:       r.Score(),
		Summary:     r.Summary,
		TopComments: r.TopComments,
	}, nil
}

func (a *Activities) LLMGenerateActivity(ctx context.Context, in LLMGenerateInput) (LLMGenerateOutput, error) {
	var p providers.LLMProvider = a.providers
	if in.ProviderRef != "" {
		found, _, ok := a.providers.FindLLMProviderByName(in.ProviderRef)
		if !ok {
			return LLMGenerateOutput{}, fmt.Errorf("llm provider ref not configured in worker: %s", in.ProviderRef)
		}
		p = found
	}
	start := time.Now()
	resp, info, err := providers.Generate(ctx, p, providers.GenerateRequest{
		Operation:   in.Operation,
		System:      in.System,
		Prompt:      in.Prompt,
		Model:       a.cfg.ChatModel,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		return LLMGenerateOutput{}, fmt.Errorf("llm generate via %s failed: %w", info.Name, err)
	}
	return LLMGenerateOutput{
		Text:             resp.Text,
		ProviderName:     info.Name,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		LatencyMS:        time.Since(start).Milliseconds(),
	}, nil
}

func (a *Activities) LogLLMCallActivity(ctx context.Context, in LogLLMCallInput) error {
	if a.audit == nil {
		return nil
	}
	return a.audit.Insert(ctx, storage.LLMCallRecord{
		Operation:        in.Operation,
		ProviderName:     in.ProviderName,
		Model:            in.Model,
		RequestID:        in.RequestID,
		Status:           in.Status,
		ErrorType:        in.ErrorType,
		PromptTokens:     in.PromptTokens,
		CompletionTokens: in.CompletionTokens,
		LatencyMS:        in.LatencyMS,
	})
}

func (a *Activities) SaveDigestActivity(ctx context.Context, in SaveDigestInput) error {
	if err := a.digests.Upsert(ctx, in.Digest); err != nil {
		return err
	}
	a.logger.Info("digest saved",
		zap.String("digest_id", in.Digest.DigestID),
		zap.String("status", in.Digest.Status),
		zap.Int("products", len(in.Digest.Products)),
	)
	return nil
}
