package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"insufficient_quota":           ErrorQuota,
		"429 Too Many Requests":        ErrorRate,
		"rate limit reached":           ErrorRate,
		"context_length_exceeded":      ErrorContext,
		"timeout":                      ErrorTransient,
		"dial tcp: connection refused": ErrorTransient,
		"bad request":                  ErrorPermanent,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

func TestClassifyWrappedSentinels(t *testing.T) {
	if got := ClassifyError(fmt.Errorf("openai: %w", ErrMissingKey)); got != ErrorConfig {
		t.Fatalf("missing key: got %s", got)
	}
	if got := ClassifyError(fmt.Errorf("call: %w", context.DeadlineExceeded)); got != ErrorTransient {
		t.Fatalf("deadline: got %s", got)
	}
	if got := ClassifyError(fmt.Errorf("call: %w", context.Canceled)); got != ErrorPermanent {
		t.Fatalf("canceled: got %s", got)
	}
	if ClassifyError(nil) != "" {
		t.Fatalf("nil error should classify as empty")
	}
}
