package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
)

var (
	ErrMissingKey = errors.New("provider key missing")
	ErrNoChoices  = errors.New("provider returned no choices")
)

type ErrorType string

const (
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorTransient ErrorType = "transient"
	ErrorPermanent ErrorType = "permanent"
	ErrorContext   ErrorType = "context"
	ErrorConfig    ErrorType = "config"
)

func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingKey) {
		return ErrorConfig
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTransient
	}
	if errors.Is(err, context.Canceled) {
		return ErrorPermanent
	}

	e := strings.ToLower(err.Error())
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests && strings.Contains(e, "quota"):
			return ErrorQuota
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return ErrorRate
		case apiErr.StatusCode == http.StatusRequestTimeout || apiErr.StatusCode >= 500:
			return ErrorTransient
		}
	}

	switch {
	case strings.Contains(e, "quota"), strings.Contains(e, "credit"), strings.Contains(e, "insufficient_quota"):
		return ErrorQuota
	case strings.Contains(e, "rate limit"), strings.Contains(e, "rate_limit"), strings.Contains(e, "429"):
		return ErrorRate
	case strings.Contains(e, "context_length"), strings.Contains(e, "context length"), strings.Contains(e, "too long"):
		return ErrorContext
	case strings.Contains(e, "timeout"), strings.Contains(e, "temporarily"), strings.Contains(e, "unavailable"),
		strings.Contains(e, "connection refused"), strings.Contains(e, "connection reset"):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}

// shouldFailover reports whether the next provider in line may succeed where this one failed.
func shouldFailover(t ErrorType) bool {
	switch t {
	case ErrorQuota, ErrorRate, ErrorTransient, ErrorConfig:
		return true
	default:
		return false
	}
}
