package core

import (
	"errors"
	"strings"
	"testing"
)

func TestDomainError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := (&DomainError{
		Category: ErrCatValidation,
		Code:     "CODE",
		Message:  "message",
	}).WithCause(cause)

	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be unwrapped")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to match cause")
	}

	match := &DomainError{Category: ErrCatValidation, Code: "CODE"}
	if !errors.Is(err, match) {
		t.Fatalf("expected errors.Is to match category and code")
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := &DomainError{Category: ErrCatExecution, Code: "X", Message: "msg"}
	err.WithDetail("k", "v")
	if err.Details == nil || err.Details["k"] != "v" {
		t.Fatalf("expected details to be set")
	}
}

func TestErrorFactories(t *testing.T) {
	if ErrValidation("C", "m").Retryable {
		t.Fatalf("validation should not be retryable")
	}
	if !ErrModelFailed("claude", errors.New("boom")).Retryable {
		t.Fatalf("model failure should be retryable")
	}
	if !ErrModelTimeout("gpt").Retryable {
		t.Fatalf("model timeout should be retryable")
	}
	if ErrTierLimitExceeded(TierFree, 3, 3).Retryable {
		t.Fatalf("tier limit should not be retryable")
	}
	if !ErrInsufficientResponses(1, 2).Retryable {
		t.Fatalf("insufficient responses should be retryable")
	}
	if ErrNotFound("deliberation", "id").Retryable {
		t.Fatalf("not found should not be retryable")
	}
}

func TestErrTierLimitExceeded_Details(t *testing.T) {
	err := ErrTierLimitExceeded(TierFree, 3, 3)

	if err.Category != ErrCatQuota || err.Code != CodeTierLimit {
		t.Fatalf("unexpected classification: %v", err)
	}
	if err.Details["used"] != 3 || err.Details["limit"] != 3 {
		t.Fatalf("expected usage details, got %v", err.Details)
	}
	if !strings.Contains(err.Error(), "free") {
		t.Fatalf("message should name the tier: %s", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrModelFailed("claude", nil)) {
		t.Fatalf("expected retryable error")
	}
	if IsRetryable(errors.New("plain")) {
		t.Fatalf("expected non-domain error to be non-retryable")
	}
}

func TestGetCategory(t *testing.T) {
	if GetCategory(ErrModelTimeout("gpt")) != ErrCatTimeout {
		t.Fatalf("expected timeout category")
	}
	if GetCategory(errors.New("plain")) != ErrCatInternal {
		t.Fatalf("expected internal category for non-domain error")
	}
	if !IsCategory(ErrInsufficientResponses(0, 2), ErrCatConsensus) {
		t.Fatalf("expected category match")
	}
}

func TestGetCategory_Wrapped(t *testing.T) {
	wrapped := &DomainError{
		Category: ErrCatExecution,
		Code:     "OUTER",
		Message:  "outer",
		Cause:    ErrModelTimeout("gpt"),
	}
	if GetCategory(wrapped) != ErrCatExecution {
		t.Fatalf("outermost category should win")
	}
}
