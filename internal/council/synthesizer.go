package council

import (
	"fmt"
	"sort"
	"strings"

	"github.com/council-mode/council/internal/core"
)

// Arbitration log actions, always recorded in this logical order no matter
// how dispatch completion was actually interleaved.
const (
	ActionDispatch   = "dispatch"
	ActionWeigh      = "weigh"
	ActionAnalyze    = "analyze"
	ActionResolve    = "resolve"
	ActionSynthesize = "synthesize"
	ActionFallback   = "fallback"
)

// Transparency flags surfaced on the synthesis result.
const (
	FlagNoResponses          = "no_responses"
	FlagSingleModel          = "single_model"
	FlagConsensus            = "consensus"
	FlagPartialAgreement     = "partial_agreement"
	FlagSplitDecision        = "split_decision"
	FlagDisagreementSurfaced = "disagreement_surfaced"
	FlagTruncated            = "truncated"
)

// SynthesisOptions configures synthesis output.
type SynthesisOptions struct {
	// MaxLength truncates the final text to at most this many runes,
	// applied after all disclosure text has been composed. Zero disables
	// truncation. The cut lands on a word boundary.
	MaxLength int
}

// Synthesizer arbitrates the response set into one final answer with a
// numbered audit trail. It is a pure function over its inputs.
type Synthesizer struct{}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// logBuilder accumulates arbitration steps with stable numbering.
type logBuilder struct {
	steps []core.ArbitrationStep
}

func (l *logBuilder) add(action, reasoning, outcome string) {
	l.steps = append(l.steps, core.ArbitrationStep{
		Step:      len(l.steps) + 1,
		Action:    action,
		Reasoning: reasoning,
		Outcome:   outcome,
	})
}

// Synthesize produces the final unified text and arbitration log. The log
// always walks dispatch → weights → agreement → divergence resolution →
// final text, even on degenerate inputs.
func (s *Synthesizer) Synthesize(query string, responses []core.ModelResponse, agreement core.AgreementAnalysis, weights []core.ModelWeight, opts SynthesisOptions) core.SynthesisResult {
	usable := usableResponses(responses)
	log := &logBuilder{}
	flags := make([]string, 0, 2)

	log.add(ActionDispatch,
		fmt.Sprintf("council query: %s", Summarize(query)),
		fmt.Sprintf("%d of %d responses usable", len(usable), len(responses)))

	ranked := rankedWeights(weights)
	log.add(ActionWeigh, "applied specialty weights with confidence correction", describeWeights(ranked))

	log.add(ActionAnalyze,
		"compared responses pairwise for content overlap, confidence spread and contradictions",
		fmt.Sprintf("agreement %s (%.0f/100)", agreement.Level, agreement.Score))

	log.add(ActionResolve,
		"resolved divergent points per their recorded policies",
		describeDivergences(agreement.DivergentPoints))

	var final string
	switch {
	case len(usable) == 0:
		final = "I was unable to gather responses from the council for this question. Deliberation was incomplete, so no synthesized answer is available. Please try again."
		flags = append(flags, FlagNoResponses)
		log.add(ActionFallback,
			"no model produced a usable response before the deadline",
			"returned an explicit inability-to-answer message instead of fabricating confidence")

	case len(usable) == 1:
		final = usable[0].Content +
			fmt.Sprintf("\n\n---\nNote: full council deliberation was unavailable; this answer comes from a single model (%s).", usable[0].DisplayName)
		flags = append(flags, FlagSingleModel)
		log.add(ActionSynthesize,
			"only one usable response: returned it verbatim with a disclosure note",
			fmt.Sprintf("single-model answer from %s", usable[0].ModelID))

	case agreement.Level == core.AgreementSplit:
		final = s.composeSplit(usable, ranked, agreement)
		flags = append(flags, FlagSplitDecision, FlagDisagreementSurfaced)
		log.add(ActionSynthesize,
			"split agreement: presented top two weighted positions instead of picking a silent winner",
			fmt.Sprintf("primary and alternative views with %d divergent points enumerated", len(agreement.DivergentPoints)))

	case agreement.Level == core.AgreementHigh:
		lead := s.leadResponse(usable, ranked)
		final = lead.Content +
			fmt.Sprintf("\n\n---\nConsensus: %d models independently agreed on this direction.", len(usable))
		flags = append(flags, FlagConsensus)
		log.add(ActionSynthesize,
			"high agreement: led with the highest-weighted response",
			fmt.Sprintf("consensus answer led by %s", lead.ModelID))

	default: // moderate or low
		lead := s.leadResponse(usable, ranked)
		final = lead.Content
		if note := partialAgreementNote(usable, agreement); note != "" {
			final += note
			flags = append(flags, FlagPartialAgreement)
		}
		log.add(ActionSynthesize,
			"moderate/low agreement: led with the highest-weighted response and disclosed the difference",
			fmt.Sprintf("answer led by %s at %.0f%% agreement", lead.ModelID, agreement.Score))
	}

	// Truncation is last, after all disclosure text is composed.
	if opts.MaxLength > 0 && len([]rune(final)) > opts.MaxLength {
		final = truncateWords(final, opts.MaxLength)
		flags = append(flags, FlagTruncated)
	}

	return core.SynthesisResult{
		FinalText:         final,
		Log:               log.steps,
		Weights:           ranked,
		TransparencyFlags: flags,
	}
}

// composeSplit surfaces the top two weighted responses and every divergent
// point. Split-level disagreement is never hidden by synthesis.
func (s *Synthesizer) composeSplit(usable []core.ModelResponse, ranked []core.ModelWeight, agreement core.AgreementAnalysis) string {
	ordered := s.orderByWeight(usable, ranked)

	var b strings.Builder
	b.WriteString("The council is split on this question; both leading views are presented.\n\n")
	b.WriteString(fmt.Sprintf("## Primary Recommendation (%s)\n%s\n\n", ordered[0].DisplayName, ordered[0].Content))
	if len(ordered) > 1 {
		b.WriteString(fmt.Sprintf("## Alternative View (%s)\n%s\n\n", ordered[1].DisplayName, ordered[1].Content))
	}

	if len(agreement.DivergentPoints) > 0 {
		b.WriteString("## Points of Disagreement\n")
		for i, dp := range agreement.DivergentPoints {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, dp.Topic))
			for _, pos := range dp.Positions {
				stated := pos.Statement
				if stated == "" {
					stated = "(no summary available)"
				}
				b.WriteString(fmt.Sprintf("   - %s (confidence %.0f): %s\n", pos.ModelID, pos.Confidence, stated))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// partialAgreementNote names the agreement percentage and the primary point
// of difference when the other models add distinct value.
func partialAgreementNote(usable []core.ModelResponse, agreement core.AgreementAnalysis) string {
	if len(agreement.DivergentPoints) == 0 {
		return ""
	}
	return fmt.Sprintf("\n\n---\nModels agreed at %.0f%%. Primary point of difference: %s.",
		agreement.Score, agreement.DivergentPoints[0].Topic)
}

func (s *Synthesizer) leadResponse(usable []core.ModelResponse, ranked []core.ModelWeight) core.ModelResponse {
	return s.orderByWeight(usable, ranked)[0]
}

// orderByWeight sorts responses by their adjusted weight descending; models
// without a weight entry sink to the end.
func (s *Synthesizer) orderByWeight(usable []core.ModelResponse, ranked []core.ModelWeight) []core.ModelResponse {
	weightOf := make(map[string]float64, len(ranked))
	for _, w := range ranked {
		weightOf[w.ModelID] = w.Adjusted
	}
	ordered := make([]core.ModelResponse, len(usable))
	copy(ordered, usable)
	sort.SliceStable(ordered, func(i, j int) bool {
		wi, wj := weightOf[ordered[i].ModelID], weightOf[ordered[j].ModelID]
		if wi != wj {
			return wi > wj
		}
		return ordered[i].ModelID < ordered[j].ModelID
	})
	return ordered
}

func rankedWeights(weights []core.ModelWeight) []core.ModelWeight {
	ranked := make([]core.ModelWeight, len(weights))
	copy(ranked, weights)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Adjusted != ranked[j].Adjusted {
			return ranked[i].Adjusted > ranked[j].Adjusted
		}
		return ranked[i].ModelID < ranked[j].ModelID
	})
	return ranked
}

func describeWeights(weights []core.ModelWeight) string {
	if len(weights) == 0 {
		return "no weights: no usable responses"
	}
	parts := make([]string, 0, len(weights))
	for _, w := range weights {
		parts = append(parts, fmt.Sprintf("%s=%.0f", w.ModelID, w.Adjusted))
	}
	return strings.Join(parts, ", ")
}

func describeDivergences(points []core.DivergentPoint) string {
	if len(points) == 0 {
		return "no divergent points"
	}
	topics := make([]string, 0, len(points))
	for _, p := range points {
		topics = append(topics, fmt.Sprintf("%s (%s)", p.Topic, p.Resolution))
	}
	return strings.Join(topics, "; ")
}
