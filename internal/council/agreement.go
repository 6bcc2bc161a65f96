package council

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/council-mode/council/internal/core"
)

// Agreement score blend and thresholds.
const (
	similarityWeight      = 0.5
	confidenceWeight      = 0.3
	contradictionPenalty  = 15.0
	confidenceDeltaMin    = 15.0 // minimum confidence gap for a divergence point
	alignedPointThreshold = 0.3  // sentence word-overlap minimum
)

var (
	yesAssertPattern = regexp.MustCompile(`(?i)\b(yes|correct|true|definitely|absolutely|certainly)\b`)
	noAssertPattern  = regexp.MustCompile(`(?i)\b(no|incorrect|false|wrong|not (correct|true|right))\b`)
	numberPattern    = regexp.MustCompile(`\b\d+(?:[.,]\d+)*\b`)
)

// Analyzer compares a set of normalized responses pairwise and produces the
// agreement report. It is a pure function over the response set: completion
// order of the responses never affects the result.
type Analyzer struct{}

// NewAnalyzer creates an agreement analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze produces the cross-response agreement report.
func (a *Analyzer) Analyze(responses []core.ModelResponse) core.AgreementAnalysis {
	usable := usableResponses(responses)

	switch len(usable) {
	case 0:
		return core.AgreementAnalysis{
			Level:           core.AgreementSplit,
			Score:           0,
			AlignedPoints:   []string{},
			DivergentPoints: []core.DivergentPoint{},
		}
	case 1:
		// A single voice has no basis for disagreement.
		return core.AgreementAnalysis{
			Level:           core.AgreementHigh,
			Score:           100,
			AlignedPoints:   []string{usable[0].Summary},
			DivergentPoints: []core.DivergentPoint{},
		}
	}

	// Deterministic pair ordering regardless of dispatch completion order.
	sorted := make([]core.ModelResponse, len(usable))
	copy(sorted, usable)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ModelID < sorted[j].ModelID })

	similarity := averagePairwiseSimilarity(sorted)
	alignment := confidenceAlignment(sorted)
	contradictions := DetectFactualContradictions(sorted)

	score := clamp(
		similarity*similarityWeight+alignment*confidenceWeight-float64(len(contradictions))*contradictionPenalty,
		0, 100)

	return core.AgreementAnalysis{
		Level:           levelForScore(score),
		Score:           score,
		AlignedPoints:   alignedPoints(sorted),
		DivergentPoints: divergentPoints(sorted, contradictions),
	}
}

func levelForScore(score float64) core.AgreementLevel {
	switch {
	case score >= 80:
		return core.AgreementHigh
	case score >= 60:
		return core.AgreementModerate
	case score >= 40:
		return core.AgreementLow
	default:
		return core.AgreementSplit
	}
}

// averagePairwiseSimilarity computes the mean Jaccard concept overlap across
// all response pairs, scaled to 0-100.
func averagePairwiseSimilarity(responses []core.ModelResponse) float64 {
	var scores []float64
	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			a := contentWords(responses[i].Content)
			b := contentWords(responses[j].Content)
			scores = append(scores, jaccard(a, b))
		}
	}
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)) * 100
}

// confidenceAlignment converts the spread of confidence scores into an
// alignment term: zero variance means 100.
func confidenceAlignment(responses []core.ModelResponse) float64 {
	mean := 0.0
	for i := range responses {
		mean += responses[i].Confidence.NormalizedScore
	}
	mean /= float64(len(responses))

	variance := 0.0
	for i := range responses {
		d := responses[i].Confidence.NormalizedScore - mean
		variance += d * d
	}
	variance /= float64(len(responses))

	return clamp(100-math.Sqrt(variance)*2, 0, 100)
}

// Contradiction captures one factual clash between two responses.
type Contradiction struct {
	Topic string
	First core.ModelResponse
	Other core.ModelResponse
}

// DetectFactualContradictions finds opposite yes/no assertions and clashing
// definitive numeric statements between response pairs.
func DetectFactualContradictions(responses []core.ModelResponse) []Contradiction {
	var found []Contradiction
	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			a, b := responses[i], responses[j]
			aYes, aNo := yesAssertPattern.MatchString(a.Content), noAssertPattern.MatchString(a.Content)
			bYes, bNo := yesAssertPattern.MatchString(b.Content), noAssertPattern.MatchString(b.Content)

			// Opposite polarity only: one asserts yes without no, the other
			// the reverse.
			if (aYes && !aNo && bNo && !bYes) || (aNo && !aYes && bYes && !bNo) {
				found = append(found, Contradiction{
					Topic: "direct yes/no disagreement",
					First: a,
					Other: b,
				})
				continue
			}

			if numbersClash(a.Content, b.Content) {
				found = append(found, Contradiction{
					Topic: "conflicting numeric claims",
					First: a,
					Other: b,
				})
			}
		}
	}
	return found
}

// numbersClash reports whether two short definitive statements lead with
// different numbers. Only the leading figure is compared; long texts with
// many incidental numbers are not treated as clashing.
func numbersClash(a, b string) bool {
	na := numberPattern.FindString(firstSentence(a))
	nb := numberPattern.FindString(firstSentence(b))
	return na != "" && nb != "" && na != nb
}

// alignedPoints returns sentences from the first model that every other
// model effectively restates.
func alignedPoints(responses []core.ModelResponse) []string {
	first := splitSentences(responses[0].Content)
	points := make([]string, 0)

	for _, sentence := range first {
		agreedByAll := true
		for _, other := range responses[1:] {
			if !anySentenceOverlaps(sentence, splitSentences(other.Content)) {
				agreedByAll = false
				break
			}
		}
		if agreedByAll {
			points = append(points, strings.TrimSpace(sentence))
		}
	}

	if len(points) == 0 && hasSummaries(responses) {
		points = append(points, "Models took a broadly aligned approach to the question")
	}
	return points
}

func anySentenceOverlaps(sentence string, candidates []string) bool {
	words := contentWords(sentence)
	for _, c := range candidates {
		if jaccard(words, contentWords(c)) >= alignedPointThreshold {
			return true
		}
	}
	return false
}

func hasSummaries(responses []core.ModelResponse) bool {
	for i := range responses {
		if responses[i].Summary != "" {
			return true
		}
	}
	return false
}

// divergentPoints reports explicit contradictions first, then confidence
// gaps of at least confidenceDeltaMin between pairs not already captured.
func divergentPoints(responses []core.ModelResponse, contradictions []Contradiction) []core.DivergentPoint {
	points := make([]core.DivergentPoint, 0)
	covered := make(map[string]bool)

	for _, c := range contradictions {
		points = append(points, core.DivergentPoint{
			Topic: c.Topic,
			Positions: []core.Position{
				{ModelID: c.First.ModelID, Statement: c.First.Summary, Confidence: c.First.Confidence.NormalizedScore},
				{ModelID: c.Other.ModelID, Statement: c.Other.Summary, Confidence: c.Other.Confidence.NormalizedScore},
			},
			Resolution: core.ResolutionPresentedBoth,
			Reasoning:  "Factual contradiction: both positions are surfaced rather than silently resolved",
		})
		covered[pairKey(c.First.ModelID, c.Other.ModelID)] = true
	}

	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			a, b := responses[i], responses[j]
			if covered[pairKey(a.ModelID, b.ModelID)] {
				continue
			}
			delta := a.Confidence.NormalizedScore - b.Confidence.NormalizedScore
			if math.Abs(delta) < confidenceDeltaMin {
				continue
			}
			higher := a
			if delta < 0 {
				higher = b
			}
			points = append(points, core.DivergentPoint{
				Topic: fmt.Sprintf("confidence divergence between %s and %s", a.ModelID, b.ModelID),
				Positions: []core.Position{
					{ModelID: a.ModelID, Statement: a.Summary, Confidence: a.Confidence.NormalizedScore},
					{ModelID: b.ModelID, Statement: b.Summary, Confidence: b.Confidence.NormalizedScore},
				},
				Resolution: core.ResolutionHigherConfidence,
				Reasoning:  fmt.Sprintf("Resolved toward %s, whose confidence score is higher", higher.ModelID),
			})
		}
	}

	return points
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func usableResponses(responses []core.ModelResponse) []core.ModelResponse {
	out := make([]core.ModelResponse, 0, len(responses))
	for i := range responses {
		if responses[i].Usable() {
			out = append(out, responses[i])
		}
	}
	return out
}

// contentWords extracts the lowercase words longer than three characters
// used for concept-overlap comparison.
func contentWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 3 {
			words = append(words, f)
		}
	}
	return words
}

// jaccard computes |A ∩ B| / |A ∪ B| over the two word lists.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	setA := make(map[string]bool, len(a))
	for _, w := range a {
		setA[w] = true
	}
	setB := make(map[string]bool, len(b))
	for _, w := range b {
		setB[w] = true
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA)
	for w := range setB {
		if !setA[w] {
			union++
		}
	}
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

var sentenceSplitPattern = regexp.MustCompile(`[.!?]+\s+|\n+`)

func splitSentences(text string) []string {
	parts := sentenceSplitPattern.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimRight(p, ".!?"))
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func firstSentence(text string) string {
	s := splitSentences(text)
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
