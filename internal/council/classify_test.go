package council

import (
	"testing"

	"github.com/council-mode/council/internal/core"
)

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []core.QueryType
	}{
		{
			name:  "plain question",
			query: "What should I cook tonight?",
			want:  []core.QueryType{core.QueryGeneral},
		},
		{
			name:  "reasoning",
			query: "Explain why the algorithm terminates, step by step",
			want:  []core.QueryType{core.QueryReasoning},
		},
		{
			name:  "research",
			query: "Summarize the literature on intermittent fasting with sources",
			want:  []core.QueryType{core.QueryResearch},
		},
		{
			name:  "current events first",
			query: "What is the latest research on GLP-1 drugs and why does it matter?",
			want:  []core.QueryType{core.QueryCurrentEvents, core.QueryResearch, core.QueryReasoning},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyQuery(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("ClassifyQuery() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("tag[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPrimaryQueryType(t *testing.T) {
	if got := PrimaryQueryType("latest news on rate cuts"); got != core.QueryCurrentEvents {
		t.Errorf("PrimaryQueryType() = %v, want current_events", got)
	}
	if got := PrimaryQueryType("anything at all"); got != core.QueryGeneral {
		t.Errorf("PrimaryQueryType() = %v, want general", got)
	}
}
