package council

import (
	"regexp"
	"strings"

	"github.com/council-mode/council/internal/core"
)

// Factor weights for the blended confidence score. Fixed by design of the
// scoring model; reasoning depth dominates, hedging is the main detractor.
const (
	weightReasoningDepth = 0.30
	weightHedging        = 0.25
	weightCitations      = 0.15
	weightCompleteness   = 0.15
	weightConsistency    = 0.15
)

var (
	hedgePattern = regexp.MustCompile(`(?i)\b(might|may|maybe|perhaps|possibly|probably|presumably|i think|i believe|i guess|not sure|uncertain|unclear|it depends|could be|seems|appears|likely)\b`)

	ordinalPattern     = regexp.MustCompile(`(?i)\b(first|second|third|step \d+|then|next|finally|lastly)\b|^\s*\d+[.)]`)
	causalPattern      = regexp.MustCompile(`(?i)\b(because|therefore|thus|hence|consequently|as a result|which means|so that|due to)\b`)
	contrastPattern    = regexp.MustCompile(`(?i)\b(however|but|although|whereas|on the other hand|that said|conversely)\b`)
	examplePattern     = regexp.MustCompile(`(?i)\b(for example|for instance|such as|e\.g\.|to illustrate)\b`)
	alternativePattern = regexp.MustCompile(`(?i)\b(alternatively|another option|another approach|instead|either|or you could)\b`)
	assumptionPattern  = regexp.MustCompile(`(?i)\b(assuming|assumption|suppose|given that|provided that|if we)\b`)
	listItemPattern    = regexp.MustCompile(`(?m)^\s*([-*•]|\d+[.)])\s+`)

	urlPattern      = regexp.MustCompile(`https?://[^\s)\]]+`)
	citationPattern = regexp.MustCompile(`(?i)\b(according to|a study|studies show|research (shows|suggests|indicates)|source[s]?:|\w+ et al\.?)\b`)

	summaryMarkerPattern = regexp.MustCompile(`(?i)\b(in summary|in conclusion|to conclude|to summarize|overall|in short|bottom line)\b`)
	actionablePattern    = regexp.MustCompile(`(?i)\b(recommend|you should|i suggest|consider|the best (option|approach|choice)|start by|my advice)\b`)
	directAnswerPattern  = regexp.MustCompile(`(?i)^(yes|no)\b|\bthe answer is\b|\bdefinitely\b|\bit is\b|\bit is not\b`)

	// Contradiction marker pairs: both sides present in the same text
	// suggests flip-flopping certainty.
	contradictionPairs = []struct{ a, b *regexp.Regexp }{
		{regexp.MustCompile(`(?i)\balways\b`), regexp.MustCompile(`(?i)\b(sometimes|occasionally|rarely)\b`)},
		{regexp.MustCompile(`(?i)\bnever\b`), regexp.MustCompile(`(?i)\b(sometimes|occasionally|often)\b`)},
		{regexp.MustCompile(`(?i)\b(definitely|certainly|without a doubt)\b`), regexp.MustCompile(`(?i)\b(maybe|perhaps|might not|not sure|uncertain)\b`)},
		{regexp.MustCompile(`(?i)\bis impossible\b`), regexp.MustCompile(`(?i)\bis possible\b`)},
	}
)

// Normalizer derives comparable confidence signals from raw response text.
// It is deterministic and makes no external calls: the same input string
// always produces the same scores.
type Normalizer struct{}

// NewNormalizer creates a confidence normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize scores one response text.
func (n *Normalizer) Normalize(text string) core.Confidence {
	depth := ReasoningDepth(text)

	// Depth is 1-5; rescale to 0-100 for blending.
	depthScore := (depth - 1) / 4 * 100

	score := depthScore*weightReasoningDepth +
		HedgingScore(text)*weightHedging +
		CitationScore(text)*weightCitations +
		CompletenessScore(text)*weightCompleteness +
		ConsistencyScore(text)*weightConsistency

	return core.Confidence{
		NormalizedScore: clamp(score, 0, 100),
		ReasoningDepth:  depth,
	}
}

// HedgingScore rates how assertive the text is. More hedging phrases per
// word means a lower score; empty or hedge-free text scores 100.
func HedgingScore(text string) float64 {
	words := wordCount(text)
	if words == 0 {
		return 100
	}
	hedges := len(hedgePattern.FindAllString(text, -1))
	if hedges == 0 {
		return 100
	}
	density := float64(hedges) / float64(words)
	return clamp(100-density*500, 0, 100)
}

// ReasoningDepth rates the structural depth of the argument on a 1-5 scale.
func ReasoningDepth(text string) float64 {
	depth := 1.0
	if ordinalPattern.MatchString(text) {
		depth++
	}
	if causalPattern.MatchString(text) {
		depth++
	}
	for _, p := range []*regexp.Regexp{contrastPattern, examplePattern, alternativePattern, assumptionPattern, listItemPattern} {
		if p.MatchString(text) {
			depth += 0.5
		}
	}
	if depth > 5 {
		depth = 5
	}
	return depth
}

// CitationScore counts URLs and citation-style phrases, saturating at
// ten citations for a score of 100.
func CitationScore(text string) float64 {
	count := len(urlPattern.FindAllString(text, -1)) +
		len(citationPattern.FindAllString(text, -1))
	if count > 10 {
		count = 10
	}
	return float64(count) * 10
}

// CompletenessScore rates whether the text looks like a finished answer.
func CompletenessScore(text string) float64 {
	score := 50.0
	words := wordCount(text)

	if words >= 100 {
		score += 15
	}
	if words > 0 && words < 20 {
		score -= 20
	}
	if summaryMarkerPattern.MatchString(text) {
		score += 10
	}
	if actionablePattern.MatchString(text) {
		score += 15
	}
	if directAnswerPattern.MatchString(strings.TrimSpace(text)) {
		score += 10
	}

	return clamp(score, 0, 100)
}

// ConsistencyScore penalizes self-contradicting certainty within one text.
func ConsistencyScore(text string) float64 {
	score := 100.0
	for _, pair := range contradictionPairs {
		if pair.a.MatchString(text) && pair.b.MatchString(text) {
			score -= 20
		}
	}
	return clamp(score, 0, 100)
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
