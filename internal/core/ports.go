package core

import (
	"context"
	"time"
)

// Message is a single turn of conversation history handed to a provider.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// PromptContext is the optional context passed along with a prompt.
type PromptContext struct {
	SystemPrompt string
	History      []Message
}

// ClientResult is the raw output of one provider call, before normalization.
type ClientResult struct {
	Content      string
	TokensUsed   int
	FinishReason string
}

// ModelClient is the black-box provider capability. Implementations are
// stateless and safe for concurrent use; timeout and retry are owned by the
// dispatcher, not the client.
type ModelClient interface {
	// Name returns the provider identifier (e.g. "claude", "gpt").
	Name() string

	// DisplayName returns the human-readable provider name.
	DisplayName() string

	// Ping checks that the provider is reachable and authenticated.
	Ping(ctx context.Context) error

	// Query sends a prompt with optional context and returns the raw result.
	Query(ctx context.Context, prompt string, pctx *PromptContext) (*ClientResult, error)
}

// AdapterRegistry resolves configured model clients. It is constructed once
// at process start and injected; there is no package-level registry.
type AdapterRegistry interface {
	// Get retrieves a client by provider name.
	Get(name string) (ModelClient, error)

	// List returns all registered provider names.
	List() []string

	// Has checks whether a provider is registered.
	Has(name string) bool
}

// DeliberationSummary is the lightweight listing row for stored deliberations.
type DeliberationSummary struct {
	ID             string         `json:"id"`
	Query          string         `json:"query"`
	AgreementLevel AgreementLevel `json:"agreement_level"`
	Trigger        TriggerType    `json:"trigger"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DeliberationStore persists finished deliberations. The core writes; it
// never reads a deliberation back into the pipeline.
type DeliberationStore interface {
	Save(ctx context.Context, d *CouncilDeliberation) error
	Get(ctx context.Context, id string) (*CouncilDeliberation, error)
	List(ctx context.Context, limit int) ([]DeliberationSummary, error)
	Close() error
}

// QuotaService owns daily per-user usage counters. The pipeline reads usage
// before trigger evaluation and records consumption after a deliberation
// completes.
type QuotaService interface {
	// UsedToday returns how many council queries the user has consumed today.
	UsedToday(ctx context.Context, userID string) (int, error)

	// Consume records one council query against the user's daily counter.
	Consume(ctx context.Context, userID string) error
}
