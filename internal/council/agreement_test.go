package council

import (
	"testing"

	"github.com/council-mode/council/internal/core"
)

func usable(modelID, content string, confidence float64) core.ModelResponse {
	return core.ModelResponse{
		ModelID:     modelID,
		DisplayName: modelID,
		Content:     content,
		Summary:     Summarize(content),
		Confidence:  core.Confidence{NormalizedScore: confidence},
		Status:      core.StatusSuccess,
	}
}

func TestAnalyze_NoResponses(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze(nil)
	if got.Level != core.AgreementSplit {
		t.Errorf("Level = %v, want split", got.Level)
	}
	if got.Score != 0 {
		t.Errorf("Score = %v, want 0", got.Score)
	}
	if got.AlignedPoints == nil || got.DivergentPoints == nil {
		t.Error("point slices should be empty, not nil")
	}
}

func TestAnalyze_SingleResponse(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze([]core.ModelResponse{
		usable("claude", "Refinance now while rates are low.", 80),
	})
	if got.Level != core.AgreementHigh {
		t.Errorf("Level = %v, want high", got.Level)
	}
	if got.Score != 100 {
		t.Errorf("Score = %v, want 100", got.Score)
	}
	if len(got.DivergentPoints) != 0 {
		t.Errorf("DivergentPoints = %d, want 0 for a single voice", len(got.DivergentPoints))
	}
}

func TestAnalyze_IdenticalResponses(t *testing.T) {
	a := NewAnalyzer()
	content := "Refinancing makes sense while rates remain low and closing costs stay manageable."

	got := a.Analyze([]core.ModelResponse{
		usable("claude", content, 80),
		usable("gpt", content, 80),
	})
	if got.Level != core.AgreementHigh {
		t.Errorf("Level = %v (score %.1f), want high", got.Level, got.Score)
	}
	if got.Score != 80 {
		// 100*0.5 similarity + 100*0.3 alignment, no contradictions
		t.Errorf("Score = %v, want 80", got.Score)
	}
	if len(got.AlignedPoints) == 0 {
		t.Error("identical responses should produce aligned points")
	}
}

func TestAnalyze_DisjointResponses(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze([]core.ModelResponse{
		usable("claude", "Renting preserves flexibility during uncertain employment", 70),
		usable("gpt", "Purchasing builds equity through predictable payments", 70),
	})
	if got.Level != core.AgreementSplit {
		t.Errorf("Level = %v (score %.1f), want split for disjoint content", got.Level, got.Score)
	}
}

func TestAnalyze_IgnoresFailedResponses(t *testing.T) {
	a := NewAnalyzer()
	content := "Refinancing makes sense while rates remain low."

	got := a.Analyze([]core.ModelResponse{
		usable("claude", content, 80),
		core.FailedResponse("gpt", "GPT", core.StatusTimeout, "deadline exceeded", 0),
	})
	if got.Level != core.AgreementHigh || got.Score != 100 {
		t.Errorf("failed responses should be excluded: got %v/%v", got.Level, got.Score)
	}
}

func TestAnalyze_OrderIndependent(t *testing.T) {
	a := NewAnalyzer()
	r1 := usable("claude", "Yes, the clause is enforceable in most jurisdictions.", 85)
	r2 := usable("gemini", "The clause depends heavily on local contract statutes.", 62)

	fwd := a.Analyze([]core.ModelResponse{r1, r2})
	rev := a.Analyze([]core.ModelResponse{r2, r1})
	if fwd.Score != rev.Score || fwd.Level != rev.Level {
		t.Errorf("analysis depends on input order: %v/%v vs %v/%v",
			fwd.Level, fwd.Score, rev.Level, rev.Score)
	}
}

func TestDetectFactualContradictions_YesNo(t *testing.T) {
	responses := []core.ModelResponse{
		usable("claude", "Yes, the deduction applies to home offices.", 80),
		usable("gpt", "No, that deduction was eliminated for employees.", 80),
	}

	found := DetectFactualContradictions(responses)
	if len(found) != 1 {
		t.Fatalf("DetectFactualContradictions() = %d findings, want 1", len(found))
	}
	if found[0].Topic != "direct yes/no disagreement" {
		t.Errorf("Topic = %q", found[0].Topic)
	}
}

func TestDetectFactualContradictions_Numbers(t *testing.T) {
	responses := []core.ModelResponse{
		usable("claude", "The penalty equals 42 days of interest.", 80),
		usable("gpt", "The penalty equals 90 days of interest.", 80),
	}

	found := DetectFactualContradictions(responses)
	if len(found) != 1 {
		t.Fatalf("DetectFactualContradictions() = %d findings, want 1", len(found))
	}
	if found[0].Topic != "conflicting numeric claims" {
		t.Errorf("Topic = %q", found[0].Topic)
	}
}

func TestDetectFactualContradictions_SamePolarity(t *testing.T) {
	responses := []core.ModelResponse{
		usable("claude", "Yes, this is allowed.", 80),
		usable("gpt", "Yes, certainly permitted.", 80),
	}

	if found := DetectFactualContradictions(responses); len(found) != 0 {
		t.Errorf("same-polarity answers flagged as contradiction: %d findings", len(found))
	}
}

func TestAnalyze_ConfidenceDivergence(t *testing.T) {
	a := NewAnalyzer()
	content := "Refinancing makes sense while rates remain low and closing costs stay manageable."

	got := a.Analyze([]core.ModelResponse{
		usable("claude", content, 90),
		usable("gpt", content, 60),
	})

	if len(got.DivergentPoints) != 1 {
		t.Fatalf("DivergentPoints = %d, want 1 for a 30-point confidence gap", len(got.DivergentPoints))
	}
	dp := got.DivergentPoints[0]
	if dp.Resolution != core.ResolutionHigherConfidence {
		t.Errorf("Resolution = %v, want higher_confidence", dp.Resolution)
	}
	if len(dp.Positions) != 2 {
		t.Errorf("Positions = %d, want 2", len(dp.Positions))
	}
}

func TestAnalyze_SmallConfidenceGapNotDivergent(t *testing.T) {
	a := NewAnalyzer()
	content := "Refinancing makes sense while rates remain low."

	got := a.Analyze([]core.ModelResponse{
		usable("claude", content, 80),
		usable("gpt", content, 70),
	})
	if len(got.DivergentPoints) != 0 {
		t.Errorf("a 10-point gap should not register as divergence, got %d points", len(got.DivergentPoints))
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{"identical", []string{"rates", "falling"}, []string{"rates", "falling"}, 1.0},
		{"disjoint", []string{"rates"}, []string{"equity"}, 0.0},
		{"half overlap", []string{"rates", "equity", "closing"}, []string{"equity", "closing", "terms"}, 0.5},
		{"both empty", nil, nil, 1.0},
		{"one empty", []string{"rates"}, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jaccard(tt.a, tt.b); got != tt.want {
				t.Errorf("jaccard() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  core.AgreementLevel
	}{
		{85, core.AgreementHigh},
		{80, core.AgreementHigh},
		{79.9, core.AgreementModerate},
		{60, core.AgreementModerate},
		{59, core.AgreementLow},
		{40, core.AgreementLow},
		{39.9, core.AgreementSplit},
		{0, core.AgreementSplit},
	}

	for _, tt := range tests {
		if got := levelForScore(tt.score); got != tt.want {
			t.Errorf("levelForScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
