package feed

import (
	"context"
	"errors"

	"huntbrief/internal/config"

	"go.uber.org/zap"
)

type Origin string

const (
	OriginLive Origin = "live"
	OriginMock Origin = "mock"
)

// FallbackSource serves Live and falls back to Mock when Live is missing or fails.
type FallbackSource struct {
	Live   Source
	Mock   Source
	logger *zap.Logger
}

func NewFallbackSource(live Source, logger *zap.Logger) *FallbackSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackSource{Live: live, Mock: NewMockSource(), logger: logger.Named("feed")}
}

// NewSource wires the Product Hunt API behind the mock fallback.
func NewSource(cfg config.Config, logger *zap.Logger) *FallbackSource {
	return NewFallbackSource(NewGraphQLClientFromConfig(cfg), logger)
}

func (f *FallbackSource) Trending(ctx context.Context, limit int) ([]Product, error) {
	products, _, err := f.TrendingFrom(ctx, limit)
	return products, err
}

// TrendingFrom is Trending that also reports which source answered.
func (f *FallbackSource) TrendingFrom(ctx context.Context, limit int) ([]Product, Origin, error) {
	if f.Live != nil {
		products, err := f.Live.Trending(ctx, limit)
		if err == nil {
			return products, OriginLive, nil
		}
		if !f.fallback(ctx, "trending", err) {
			return nil, OriginLive, err
		}
	}
	products, err := f.Mock.Trending(ctx, limit)
	return products, OriginMock, err
}

func (f *FallbackSource) Search(ctx context.Context, keywords string, limit int) ([]Product, error) {
	if f.Live != nil {
		products, err := f.Live.Search(ctx, keywords, limit)
		if err == nil {
			return products, nil
		}
		if !f.fallback(ctx, "search", err) {
			return nil, err
		}
	}
	return f.Mock.Search(ctx, keywords, limit)
}

func (f *FallbackSource) Details(ctx context.Context, name string) (Product, error) {
	if f.Live != nil {
		p, err := f.Live.Details(ctx, name)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, ErrProductNotFound) || !f.fallback(ctx, "details", err) {
			return Product{}, err
		}
	}
	return f.Mock.Details(ctx, name)
}

func (f *FallbackSource) Top(ctx context.Context, limit int) ([]Product, error) {
	if f.Live != nil {
		products, err := f.Live.Top(ctx, limit)
		if err == nil {
			return products, nil
		}
		if !f.fallback(ctx, "top", err) {
			return nil, err
		}
	}
	return f.Mock.Top(ctx, limit)
}

// fallback logs the live failure and reports whether the mock should answer.
// A cancelled caller gets its own error back.
func (f *FallbackSource) fallback(ctx context.Context, op string, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrNoToken) {
		f.logger.Debug("no producthunt token, serving mock data", zap.String("op", op))
		return true
	}
	f.logger.Warn("producthunt request failed, serving mock data", zap.String("op", op), zap.Error(err))
	return true
}
