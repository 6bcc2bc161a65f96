package council

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/council-mode/council/internal/core"
	"github.com/council-mode/council/internal/logging"
)

// DefaultFallbackModel is queried alone when the full council produces
// nothing usable.
const DefaultFallbackModel = "claude"

// defaultCostRates are USD per 1K tokens per provider, used for the
// per-deliberation cost estimate.
var defaultCostRates = map[string]float64{
	"claude": 0.015,
	"gpt":    0.010,
	"gemini": 0.007,
}

// Engine runs the full deliberation pipeline: trigger evaluation, dispatch,
// agreement analysis, weighting, synthesis and assembly of the immutable
// CouncilDeliberation. Stages 3-5 are pure; only dispatch performs I/O.
type Engine struct {
	trigger     *TriggerEvaluator
	dispatcher  *Dispatcher
	analyzer    *Analyzer
	weights     *WeightCalculator
	synthesizer *Synthesizer
	store       core.DeliberationStore
	quota       core.QuotaService
	logger      *logging.Logger
	triggerObs  TriggerObserver

	costRates     map[string]float64
	fallbackModel string
	dispatchOpts  DispatchOptions
	synthesisOpts SynthesisOptions
}

// TriggerObserver receives one record per trigger evaluation.
type TriggerObserver interface {
	ObserveTrigger(reason string, triggered bool)
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithStore attaches the persistence collaborator.
func WithStore(store core.DeliberationStore) EngineOption {
	return func(e *Engine) { e.store = store }
}

// WithQuota attaches the tier/quota collaborator.
func WithQuota(q core.QuotaService) EngineOption {
	return func(e *Engine) { e.quota = q }
}

// WithTriggerEvaluator overrides the default trigger evaluator.
func WithTriggerEvaluator(t *TriggerEvaluator) EngineOption {
	return func(e *Engine) { e.trigger = t }
}

// WithDispatchOptions sets the default dispatch options.
func WithDispatchOptions(opts DispatchOptions) EngineOption {
	return func(e *Engine) { e.dispatchOpts = opts }
}

// WithSynthesisOptions sets the synthesis options.
func WithSynthesisOptions(opts SynthesisOptions) EngineOption {
	return func(e *Engine) { e.synthesisOpts = opts }
}

// WithFallbackModel sets the single designated fallback model.
func WithFallbackModel(model string) EngineOption {
	return func(e *Engine) { e.fallbackModel = model }
}

// WithTriggerObserver attaches trigger telemetry.
func WithTriggerObserver(o TriggerObserver) EngineOption {
	return func(e *Engine) { e.triggerObs = o }
}

// WithCostRates overrides the per-provider cost table (USD per 1K tokens).
func WithCostRates(rates map[string]float64) EngineOption {
	return func(e *Engine) { e.costRates = rates }
}

// NewEngine creates a deliberation engine over the given dispatcher.
func NewEngine(dispatcher *Dispatcher, logger *logging.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		trigger:       NewTriggerEvaluator(),
		dispatcher:    dispatcher,
		analyzer:      NewAnalyzer(),
		weights:       NewWeightCalculator(),
		synthesizer:   NewSynthesizer(),
		logger:        logger,
		costRates:     defaultCostRates,
		fallbackModel: DefaultFallbackModel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DeliberateRequest is one council invocation.
type DeliberateRequest struct {
	Query   string
	UserID  string
	Context *TriggerContext // nil means no known user/session
	History []core.Message
	Models  []string
}

// DeliberateOutcome is the engine's result. Deliberation is nil when the
// trigger evaluator declined to run the council; Decision says why.
type DeliberateOutcome struct {
	Decision     Decision
	Deliberation *core.CouncilDeliberation
	Display      core.DisplayState
}

// Deliberate evaluates the trigger and, when it fires, runs the full
// pipeline. Quota exhaustion stops before dispatch with a typed error; all
// per-model failures downstream are absorbed into the result.
func (e *Engine) Deliberate(ctx context.Context, req DeliberateRequest) (*DeliberateOutcome, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, core.ErrValidation(core.CodeEmptyQuery, "query is empty")
	}
	if len(req.Query) > core.MaxQueryLength {
		return nil, core.ErrValidation(core.CodeQueryTooLong, "query exceeds maximum length")
	}

	decision := e.trigger.Evaluate(req.Query, req.Context)
	if e.triggerObs != nil {
		e.triggerObs.ObserveTrigger(decision.Reason, decision.ShouldTrigger)
	}
	if decision.Reason == ReasonTierLimit {
		return nil, core.ErrTierLimitExceeded(req.Context.Tier, req.Context.QueriesUsedToday, decision.DailyLimit)
	}
	if !decision.ShouldTrigger {
		e.logger.Debug("council not triggered", "reason", decision.Reason)
		return &DeliberateOutcome{Decision: decision}, nil
	}

	deliberation := e.run(ctx, decision, req)

	if e.store != nil {
		if err := e.store.Save(ctx, deliberation); err != nil {
			e.logger.Error("failed to persist deliberation", "id", deliberation.ID, "error", err)
		}
	}
	if e.quota != nil && req.UserID != "" {
		if err := e.quota.Consume(ctx, req.UserID); err != nil {
			e.logger.Warn("failed to record quota consumption", "user", req.UserID, "error", err)
		}
	}

	return &DeliberateOutcome{
		Decision:     decision,
		Deliberation: deliberation,
		Display:      InitialDisplayState(deliberation),
	}, nil
}

// run executes dispatch through synthesis and assembles the deliberation.
func (e *Engine) run(ctx context.Context, decision Decision, req DeliberateRequest) *core.CouncilDeliberation {
	opts := e.dispatchOpts
	if len(req.Models) > 0 {
		opts.Models = req.Models
	}
	opts.History = req.History

	result := e.dispatcher.Dispatch(ctx, decision.Query, opts)
	responses := result.Responses

	if _, err := e.dispatcher.FilterUsable(result, opts.MinResponses); err != nil {
		if core.IsCategory(err, core.ErrCatConsensus) && countUsable(responses) == 0 {
			e.logger.Warn("council produced no usable responses, querying fallback model",
				"fallback", e.fallbackModel)
			fb := e.dispatcher.Fallback(ctx, decision.Query, e.fallbackModel, opts)
			responses = append(responses, fb)
			if fb.Usable() && fb.LatencyMS > result.TotalLatencyMS {
				result.TotalLatencyMS = fb.LatencyMS
			}
		} else {
			// Degraded but workable: synthesize from what we have.
			e.logger.Warn("proceeding with fewer responses than requested", "error", err)
		}
	}

	tags := ClassifyQuery(decision.Query)
	agreement := e.analyzer.Analyze(responses)
	weights := e.weights.Compute(responses, tags[0])
	synthesis := e.synthesizer.Synthesize(decision.Query, responses, agreement, weights, e.synthesisOpts)

	return &core.CouncilDeliberation{
		ID:             uuid.NewString(),
		Query:          decision.Query,
		Tags:           tags,
		Responses:      responses,
		Agreement:      agreement,
		Synthesis:      synthesis,
		TotalLatencyMS: result.TotalLatencyMS,
		CostUSD:        e.estimateCost(responses),
		Trigger:        decision.Trigger,
		CreatedAt:      time.Now().UTC(),
	}
}

// estimateCost sums per-response token cost using the provider rate table.
func (e *Engine) estimateCost(responses []core.ModelResponse) float64 {
	total := 0.0
	for i := range responses {
		rate, ok := e.costRates[responses[i].ModelID]
		if !ok {
			continue
		}
		total += float64(responses[i].TokensUsed) / 1000 * rate
	}
	return total
}

func countUsable(responses []core.ModelResponse) int {
	return len(usableResponses(responses))
}
