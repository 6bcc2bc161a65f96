package council

import (
	"fmt"
	"sort"

	"github.com/council-mode/council/internal/core"
)

// Weight bounds and confidence correction. The clamp keeps every model in
// play: never fully excluded, never fully dominant.
const (
	weightFloor   = 5.0
	weightCeiling = 95.0

	confidenceMidpoint = 75.0
	// ±10% weight per 50 points of confidence deviation from the midpoint.
	confidenceSlope = 0.10 / 50.0

	defaultBaseWeight = 50.0
)

// specialtyTable assigns a priori trust per provider and query category.
var specialtyTable = map[core.QueryType]map[string]float64{
	core.QueryReasoning: {
		"claude": 60,
		"gpt":    50,
		"gemini": 45,
	},
	core.QueryResearch: {
		"claude": 50,
		"gpt":    55,
		"gemini": 50,
	},
	core.QueryCurrentEvents: {
		"claude": 45,
		"gpt":    50,
		"gemini": 60,
	},
	core.QueryGeneral: {
		"claude": 50,
		"gpt":    50,
		"gemini": 50,
	},
}

// WeightCalculator assigns participation weights from the specialty table
// corrected by each response's own confidence.
type WeightCalculator struct{}

// NewWeightCalculator creates a weight calculator.
func NewWeightCalculator() *WeightCalculator {
	return &WeightCalculator{}
}

// Compute returns one weight per usable response, sorted by adjusted weight
// descending (ties broken by model id for determinism).
func (w *WeightCalculator) Compute(responses []core.ModelResponse, queryType core.QueryType) []core.ModelWeight {
	usable := usableResponses(responses)
	weights := make([]core.ModelWeight, 0, len(usable))

	for i := range usable {
		r := &usable[i]
		base := BaseWeight(r.ModelID, queryType)
		adjusted, reason := adjustForConfidence(base, r.Confidence.NormalizedScore)
		weights = append(weights, core.ModelWeight{
			ModelID:  r.ModelID,
			Base:     base,
			Adjusted: adjusted,
			Reason:   reason,
		})
	}

	sort.Slice(weights, func(i, j int) bool {
		if weights[i].Adjusted != weights[j].Adjusted {
			return weights[i].Adjusted > weights[j].Adjusted
		}
		return weights[i].ModelID < weights[j].ModelID
	})
	return weights
}

// BaseWeight looks up the specialty weight for a provider and query type.
// Unknown providers get an equal baseline.
func BaseWeight(modelID string, queryType core.QueryType) float64 {
	table, ok := specialtyTable[queryType]
	if !ok {
		table = specialtyTable[core.QueryGeneral]
	}
	if base, ok := table[modelID]; ok {
		return base
	}
	return defaultBaseWeight
}

func adjustForConfidence(base, confidence float64) (float64, string) {
	factor := 1 + (confidence-confidenceMidpoint)*confidenceSlope
	adjusted := clamp(base*factor, weightFloor, weightCeiling)

	if adjusted == base {
		return adjusted, ""
	}
	direction := "raised"
	if adjusted < base {
		direction = "lowered"
	}
	return adjusted, fmt.Sprintf("%s for confidence %.0f vs midpoint %.0f", direction, confidence, confidenceMidpoint)
}
