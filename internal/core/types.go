package core

import (
	"time"
)

// ResponseStatus classifies the outcome of a single model call.
type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "success"
	StatusTimeout ResponseStatus = "timeout"
	StatusError   ResponseStatus = "error"
	// StatusPartial marks a response the provider truncated mid-answer.
	// The content is preserved in the record but excluded from analysis.
	StatusPartial ResponseStatus = "partial"
)

// Confidence holds the normalized confidence signals for one response.
// Providers do not return comparable native scores, so NormalizedScore is
// always derived locally; RawScore is kept only when a provider ever
// supplies one.
type Confidence struct {
	RawScore        *float64 `json:"raw_score,omitempty"`
	NormalizedScore float64  `json:"normalized_score"` // 0-100
	ReasoningDepth  float64  `json:"reasoning_depth"`  // 1-5
}

// ModelResponse is one provider's normalized answer.
type ModelResponse struct {
	ModelID        string         `json:"model_id"`
	DisplayName    string         `json:"display_name"`
	Content        string         `json:"content"`
	Summary        string         `json:"summary"`
	Confidence     Confidence     `json:"confidence"`
	Citations      []string       `json:"citations,omitempty"`
	ReasoningSteps []string       `json:"reasoning_steps,omitempty"` // at most 5
	LatencyMS      int64          `json:"latency_ms"`
	TokensUsed     int            `json:"tokens_used"`
	Timestamp      time.Time      `json:"timestamp"`
	Status         ResponseStatus `json:"status"`
	ErrorMessage   string         `json:"error_message,omitempty"`
}

// Usable reports whether the response carries content worth analyzing.
func (r *ModelResponse) Usable() bool {
	return r.Status == StatusSuccess
}

// FailedResponse builds the typed failure entry for a model.
// Invariant: non-success responses carry no content and zero confidence.
func FailedResponse(modelID, displayName string, status ResponseStatus, message string, latency time.Duration) ModelResponse {
	return ModelResponse{
		ModelID:      modelID,
		DisplayName:  displayName,
		Status:       status,
		ErrorMessage: message,
		LatencyMS:    latency.Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}
}

// AgreementLevel buckets how much the council concurred.
type AgreementLevel string

const (
	AgreementHigh     AgreementLevel = "high"
	AgreementModerate AgreementLevel = "moderate"
	AgreementLow      AgreementLevel = "low"
	AgreementSplit    AgreementLevel = "split"
)

// ResolutionPolicy describes how a divergent point was settled.
type ResolutionPolicy string

const (
	ResolutionPresentedBoth    ResolutionPolicy = "presented_both"
	ResolutionHigherConfidence ResolutionPolicy = "higher_confidence"
)

// Position is one model's stance inside a divergent point.
type Position struct {
	ModelID    string  `json:"model_id"`
	Statement  string  `json:"statement"`
	Confidence float64 `json:"confidence"`
}

// DivergentPoint records a disagreement between models and its resolution.
type DivergentPoint struct {
	Topic      string           `json:"topic"`
	Positions  []Position       `json:"positions"`
	Resolution ResolutionPolicy `json:"resolution"`
	Reasoning  string           `json:"reasoning"`
}

// AgreementAnalysis is the cross-response comparison report.
type AgreementAnalysis struct {
	Level           AgreementLevel   `json:"level"`
	Score           float64          `json:"score"` // 0-100
	AlignedPoints   []string         `json:"aligned_points"`
	DivergentPoints []DivergentPoint `json:"divergent_points"`
}

// ModelWeight is the advisory participation weight for one model.
// Weights order synthesis; they are not a probability distribution.
type ModelWeight struct {
	ModelID  string  `json:"model_id"`
	Base     float64 `json:"base"`
	Adjusted float64 `json:"adjusted"` // clamped to [5,95]
	Reason   string  `json:"reason,omitempty"`
}

// ArbitrationStep is one entry of the synthesizer's audit trail.
type ArbitrationStep struct {
	Step      int    `json:"step"`
	Action    string `json:"action"`
	Reasoning string `json:"reasoning"`
	Outcome   string `json:"outcome"`
}

// SynthesisResult is the arbitrated final answer with its audit trail.
type SynthesisResult struct {
	FinalText         string            `json:"final_text"`
	Log               []ArbitrationStep `json:"arbitration_log"`
	Weights           []ModelWeight     `json:"weights"`
	TransparencyFlags []string          `json:"transparency_flags,omitempty"`
}

// TriggerType records why this deliberation ran.
type TriggerType string

const (
	TriggerUser      TriggerType = "user_invoked"
	TriggerAutomatic TriggerType = "automatic"
)

// QueryType classifies a query for specialty weighting.
type QueryType string

const (
	QueryReasoning     QueryType = "reasoning"
	QueryResearch      QueryType = "research"
	QueryCurrentEvents QueryType = "current_events"
	QueryGeneral       QueryType = "general"
)

// CouncilDeliberation is the aggregate record of one council invocation.
// It is assembled once from the pipeline outputs and immutable thereafter.
type CouncilDeliberation struct {
	ID             string            `json:"id"`
	Query          string            `json:"query"`
	Tags           []QueryType       `json:"tags"`
	Responses      []ModelResponse   `json:"responses"`
	Agreement      AgreementAnalysis `json:"agreement"`
	Synthesis      SynthesisResult   `json:"synthesis"`
	TotalLatencyMS int64             `json:"total_latency_ms"`
	CostUSD        float64           `json:"cost_usd"`
	Trigger        TriggerType       `json:"trigger"`
	CreatedAt      time.Time         `json:"created_at"`
}

// SuccessCount returns how many responses are usable.
func (d *CouncilDeliberation) SuccessCount() int {
	n := 0
	for i := range d.Responses {
		if d.Responses[i].Usable() {
			n++
		}
	}
	return n
}

// Tier identifies a subscription tier for quota purposes.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// DisplayState is one of the progressive-disclosure presentation states.
type DisplayState string

const (
	DisplayDefault      DisplayState = "default"
	DisplayExpanded     DisplayState = "expanded"
	DisplayDisagreement DisplayState = "disagreement"
	DisplayFullLog      DisplayState = "full_log"
)
