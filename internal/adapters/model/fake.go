package model

import (
	"context"
	"sync"
	"time"

	"github.com/council-mode/council/internal/core"
)

// ScriptedClient is a deterministic in-memory client for tests and dry
// runs: it returns a fixed result (or error) after an optional delay.
type ScriptedClient struct {
	ProviderName string
	Display      string
	Content      string
	Tokens       int
	FinishReason string // defaults to "stop"
	Err          error
	Delay        time.Duration

	mu    sync.Mutex
	calls int
}

// Name returns the provider identifier.
func (s *ScriptedClient) Name() string { return s.ProviderName }

// DisplayName returns the human-readable provider name.
func (s *ScriptedClient) DisplayName() string {
	if s.Display != "" {
		return s.Display
	}
	return s.ProviderName
}

// Ping reports the scripted error, if any.
func (s *ScriptedClient) Ping(_ context.Context) error { return s.Err }

// Query returns the scripted result after the configured delay, honoring
// context cancellation.
func (s *ScriptedClient) Query(ctx context.Context, _ string, _ *core.PromptContext) (*core.ClientResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.Delay):
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	finish := s.FinishReason
	if finish == "" {
		finish = "stop"
	}
	return &core.ClientResult{
		Content:      s.Content,
		TokensUsed:   s.Tokens,
		FinishReason: finish,
	}, nil
}

// Calls returns how many times Query was invoked.
func (s *ScriptedClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var _ core.ModelClient = (*ScriptedClient)(nil)
