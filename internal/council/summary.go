package council

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/council-mode/council/internal/core"
)

// ConsensusSummary is the renderer-facing consensus block.
type ConsensusSummary struct {
	Level       string  `json:"level"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// ModelCard is the per-model card shown in the expanded view.
type ModelCard struct {
	ModelID    string  `json:"model_id"`
	Name       string  `json:"name"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"`
	LatencyMS  int64   `json:"latency_ms"`
}

// SummaryMetadata carries dispatch telemetry for the renderer.
type SummaryMetadata struct {
	TotalLatencyMS int64            `json:"total_latency_ms"`
	CostUSD        float64          `json:"cost_usd"`
	Trigger        core.TriggerType `json:"trigger"`
	Tags           []core.QueryType `json:"tags"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Summary is the JSON-serializable presentation of a deliberation for any
// renderer to consume.
type Summary struct {
	ID            string                `json:"id"`
	Query         string                `json:"query"`
	Answer        string                `json:"answer"`
	Consensus     ConsensusSummary      `json:"consensus"`
	Models        []ModelCard           `json:"models"`
	Disagreements []core.DivergentPoint `json:"disagreements"`
	Display       core.DisplayState     `json:"display"`
	Metadata      SummaryMetadata       `json:"metadata"`
}

// MapToConsensusLevel converts the internal agreement level to the
// renderer-facing label.
func MapToConsensusLevel(level core.AgreementLevel) string {
	switch level {
	case core.AgreementHigh:
		return "strong"
	case core.AgreementModerate:
		return "moderate"
	case core.AgreementLow:
		return "weak"
	default:
		return "split"
	}
}

func describeConsensus(a core.AgreementAnalysis, modelCount int) string {
	switch a.Level {
	case core.AgreementHigh:
		return fmt.Sprintf("%d models reached strong agreement (%.0f/100)", modelCount, a.Score)
	case core.AgreementModerate:
		return fmt.Sprintf("Models broadly agreed (%.0f/100) with minor differences", a.Score)
	case core.AgreementLow:
		return fmt.Sprintf("Models showed weak agreement (%.0f/100); differences are noted", a.Score)
	default:
		return fmt.Sprintf("The council is split (%.0f/100); both views are presented", a.Score)
	}
}

// FormatSummary builds the presentation summary for a deliberation.
func FormatSummary(d *core.CouncilDeliberation) Summary {
	cards := make([]ModelCard, 0, len(d.Responses))
	for i := range d.Responses {
		r := &d.Responses[i]
		cards = append(cards, ModelCard{
			ModelID:    r.ModelID,
			Name:       r.DisplayName,
			Summary:    r.Summary,
			Confidence: r.Confidence.NormalizedScore,
			Status:     string(r.Status),
			LatencyMS:  r.LatencyMS,
		})
	}

	return Summary{
		ID:     d.ID,
		Query:  d.Query,
		Answer: d.Synthesis.FinalText,
		Consensus: ConsensusSummary{
			Level:       MapToConsensusLevel(d.Agreement.Level),
			Score:       d.Agreement.Score,
			Description: describeConsensus(d.Agreement, d.SuccessCount()),
		},
		Models:        cards,
		Disagreements: d.Agreement.DivergentPoints,
		Display:       InitialDisplayState(d),
		Metadata: SummaryMetadata{
			TotalLatencyMS: d.TotalLatencyMS,
			CostUSD:        d.CostUSD,
			Trigger:        d.Trigger,
			Tags:           d.Tags,
			CreatedAt:      d.CreatedAt,
		},
	}
}

// FormatAsJSON serializes the presentation summary.
func FormatAsJSON(d *core.CouncilDeliberation) ([]byte, error) {
	return json.Marshal(FormatSummary(d))
}
