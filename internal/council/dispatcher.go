package council

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/council-mode/council/internal/core"
	"github.com/council-mode/council/internal/logging"
)

// DefaultRoster is the fixed three-model council used when the caller does
// not name models explicitly.
var DefaultRoster = []string{"claude", "gpt", "gemini"}

// Dispatch defaults.
const (
	DefaultTotalTimeout = 30 * time.Second
	DefaultModelTimeout = 12 * time.Second
	DefaultMinResponses = 2

	maxReasoningSteps = 5
	summaryMaxRunes   = 200
)

// DispatchOptions configures one council dispatch.
type DispatchOptions struct {
	Models       []string
	TotalTimeout time.Duration
	ModelTimeout time.Duration
	MinResponses int
	History      []core.Message
}

func (o *DispatchOptions) applyDefaults() {
	if len(o.Models) == 0 {
		o.Models = DefaultRoster
	}
	if o.TotalTimeout <= 0 {
		o.TotalTimeout = DefaultTotalTimeout
	}
	if o.ModelTimeout <= 0 {
		o.ModelTimeout = DefaultModelTimeout
	}
	if o.MinResponses <= 0 {
		o.MinResponses = DefaultMinResponses
	}
}

// DispatchResult is the outcome of racing the council against the global
// deadline. It is always produced; per-model failures become typed response
// entries rather than errors.
type DispatchResult struct {
	Responses      []core.ModelResponse
	SuccessCount   int
	FailureCount   int
	TotalLatencyMS int64
	PartialResult  bool
}

// DispatchObserver receives dispatch telemetry. Implementations must be
// safe for concurrent use.
type DispatchObserver interface {
	ObserveModelCall(model string, status core.ResponseStatus, latency time.Duration)
	ObserveDispatch(latency time.Duration, successes, failures int)
}

// Dispatcher fans a query out to the council concurrently under a global
// deadline. The adapter registry is injected at construction; the dispatcher
// itself holds no mutable dispatch state and is safe for concurrent use.
type Dispatcher struct {
	registry   core.AdapterRegistry
	normalizer *Normalizer
	limiters   *LimiterPool
	retry      *RetryPolicy
	logger     *logging.Logger
	observer   DispatchObserver
}

// DispatcherOption configures a dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRetryPolicy overrides the per-model retry policy.
func WithRetryPolicy(p *RetryPolicy) DispatcherOption {
	return func(d *Dispatcher) { d.retry = p }
}

// WithLimiterPool sets the per-provider rate limiter pool.
func WithLimiterPool(p *LimiterPool) DispatcherOption {
	return func(d *Dispatcher) { d.limiters = p }
}

// WithObserver attaches a telemetry observer.
func WithObserver(o DispatchObserver) DispatcherOption {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry core.AdapterRegistry, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry:   registry,
		normalizer: NewNormalizer(),
		limiters:   NewLimiterPool(DefaultRateLimiterConfig()),
		retry:      DefaultRetryPolicy(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch issues one concurrent call per model and collects whatever has
// completed when the global deadline fires. Stragglers are abandoned: a
// response arriving after the deadline is never incorporated.
func (d *Dispatcher) Dispatch(ctx context.Context, query string, opts DispatchOptions) *DispatchResult {
	opts.applyDefaults()

	shared := BuildSharedContext(query)
	results := make(chan core.ModelResponse, len(opts.Models))

	for _, model := range opts.Models {
		go func(model string) {
			results <- d.callModel(ctx, query, shared, model, opts)
		}(model)
	}

	deadline := time.NewTimer(opts.TotalTimeout)
	defer deadline.Stop()

	responses := make([]core.ModelResponse, 0, len(opts.Models))
collect:
	for range opts.Models {
		select {
		case r := <-results:
			responses = append(responses, r)
		case <-deadline.C:
			d.logger.Warn("council deadline fired, returning partial result",
				"collected", len(responses),
				"requested", len(opts.Models),
			)
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	result := &DispatchResult{Responses: responses}
	for i := range responses {
		if responses[i].Usable() {
			result.SuccessCount++
		}
		if responses[i].LatencyMS > result.TotalLatencyMS {
			// Dispatch is parallel, so total latency is the slowest call.
			result.TotalLatencyMS = responses[i].LatencyMS
		}
	}
	result.FailureCount = len(opts.Models) - result.SuccessCount
	result.PartialResult = result.SuccessCount < len(opts.Models)

	if d.observer != nil {
		d.observer.ObserveDispatch(time.Duration(result.TotalLatencyMS)*time.Millisecond,
			result.SuccessCount, result.FailureCount)
	}

	return result
}

// callModel performs one rate-limited, retried model call under the
// per-model timeout, converting any failure into a typed response entry.
func (d *Dispatcher) callModel(ctx context.Context, query string, shared SharedContext, model string, opts DispatchOptions) core.ModelResponse {
	start := time.Now()

	client, err := d.registry.Get(model)
	if err != nil {
		return d.failed(model, model, core.StatusError, err.Error(), time.Since(start))
	}

	if err := d.limiters.Get(model).Acquire(ctx); err != nil {
		return d.failed(model, client.DisplayName(), core.StatusError, "rate limit wait cancelled", time.Since(start))
	}

	pctx := SpecializeContext(shared, model, opts.History).PromptContext()

	var raw *core.ClientResult
	err = d.retry.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, opts.ModelTimeout)
		defer cancel()

		res, callErr := client.Query(callCtx, query, pctx)
		if callErr != nil {
			if errors.Is(callErr, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				return core.ErrModelTimeout(model)
			}
			return core.ErrModelFailed(model, callErr)
		}
		raw = res
		return nil
	})

	elapsed := time.Since(start)
	if err != nil {
		status := core.StatusError
		if core.IsCategory(err, core.ErrCatTimeout) {
			status = core.StatusTimeout
		}
		d.logger.Warn("model call failed", "model", model, "status", string(status), "error", err)
		return d.failed(model, client.DisplayName(), status, err.Error(), elapsed)
	}

	resp := d.normalizeResult(model, client.DisplayName(), raw, elapsed)
	d.logger.Debug("model call succeeded",
		"model", model,
		"latency_ms", resp.LatencyMS,
		"confidence", resp.Confidence.NormalizedScore,
	)
	if d.observer != nil {
		d.observer.ObserveModelCall(model, resp.Status, elapsed)
	}
	return resp
}

func (d *Dispatcher) failed(model, displayName string, status core.ResponseStatus, message string, latency time.Duration) core.ModelResponse {
	if d.observer != nil {
		d.observer.ObserveModelCall(model, status, latency)
	}
	return core.FailedResponse(model, displayName, status, message, latency)
}

// normalizeResult turns a raw provider result into the uniform record.
// Responses cut off by the provider's token budget are marked partial: the
// content is kept for the record but carries no weight in synthesis.
func (d *Dispatcher) normalizeResult(model, displayName string, raw *core.ClientResult, latency time.Duration) core.ModelResponse {
	status := core.StatusSuccess
	if truncatedFinish(raw.FinishReason) {
		status = core.StatusPartial
	}
	return core.ModelResponse{
		ModelID:        model,
		DisplayName:    displayName,
		Content:        raw.Content,
		Summary:        Summarize(raw.Content),
		Confidence:     d.normalizer.Normalize(raw.Content),
		Citations:      ExtractCitations(raw.Content),
		ReasoningSteps: ExtractReasoningSteps(raw.Content),
		LatencyMS:      latency.Milliseconds(),
		TokensUsed:     raw.TokensUsed,
		Timestamp:      time.Now().UTC(),
		Status:         status,
	}
}

// truncatedFinish reports whether the provider stopped because the token
// budget ran out rather than at a natural stopping point.
func truncatedFinish(reason string) bool {
	switch strings.ToLower(reason) {
	case "length", "max_tokens", "truncated":
		return true
	}
	return false
}

// FilterUsable keeps the successful responses and enforces the minimum
// needed for synthesis. Zero successes is a hard failure; exactly one is a
// degraded but usable partial result regardless of the minimum.
func (d *Dispatcher) FilterUsable(result *DispatchResult, min int) ([]core.ModelResponse, error) {
	if min <= 0 {
		min = DefaultMinResponses
	}
	usable := usableResponses(result.Responses)

	switch {
	case len(usable) == 0:
		return nil, core.ErrInsufficientResponses(0, min)
	case len(usable) == 1:
		return usable, nil
	case len(usable) < min:
		return usable, core.ErrInsufficientResponses(len(usable), min)
	default:
		return usable, nil
	}
}

// Fallback queries the single designated default model alone. This is the
// degraded path when the full council cannot produce a usable result; it is
// a plain call, not a re-dispatch.
func (d *Dispatcher) Fallback(ctx context.Context, query, model string, opts DispatchOptions) core.ModelResponse {
	opts.applyDefaults()
	start := time.Now()

	client, err := d.registry.Get(model)
	if err != nil {
		return d.failed(model, model, core.StatusError, err.Error(), time.Since(start))
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.ModelTimeout)
	defer cancel()

	shared := BuildSharedContext(query)
	raw, err := client.Query(callCtx, query, SpecializeContext(shared, model, opts.History).PromptContext())
	if err != nil {
		status := core.StatusError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			status = core.StatusTimeout
		}
		return d.failed(model, client.DisplayName(), status, err.Error(), time.Since(start))
	}
	return d.normalizeResult(model, client.DisplayName(), raw, time.Since(start))
}

// Summarize produces the short extractive summary: the first sentence,
// truncated at a word boundary.
func Summarize(content string) string {
	s := firstSentence(content)
	if s == "" {
		s = strings.TrimSpace(content)
	}
	return truncateWords(s, summaryMaxRunes)
}

// ExtractCitations collects URLs and citation-style phrases from the text.
func ExtractCitations(content string) []string {
	citations := urlPattern.FindAllString(content, -1)
	citations = append(citations, citationPattern.FindAllString(content, -1)...)
	if len(citations) == 0 {
		return nil
	}
	return citations
}

// ExtractReasoningSteps pulls up to five sentences that carry ordinal or
// causal structure.
func ExtractReasoningSteps(content string) []string {
	var steps []string
	for _, sentence := range splitSentences(content) {
		if ordinalPattern.MatchString(sentence) || causalPattern.MatchString(sentence) {
			steps = append(steps, strings.TrimSpace(sentence))
			if len(steps) == maxReasoningSteps {
				break
			}
		}
	}
	return steps
}

// truncateWords cuts text to at most max runes without splitting a word.
func truncateWords(text string, max int) string {
	if len([]rune(text)) <= max {
		return text
	}
	runes := []rune(text)[:max]
	cut := strings.LastIndexByte(string(runes), ' ')
	if cut <= 0 {
		return string(runes)
	}
	return strings.TrimSpace(string(runes)[:cut])
}
