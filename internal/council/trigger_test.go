package council

import (
	"testing"

	"github.com/council-mode/council/internal/core"
)

func proContext() *TriggerContext {
	return &TriggerContext{UserID: "u1", Tier: core.TierPro}
}

func TestEvaluate_CommandInvocation(t *testing.T) {
	e := NewTriggerEvaluator()

	d := e.Evaluate("/council should I take this job offer?", nil)
	if !d.ShouldTrigger {
		t.Fatal("explicit invocation must trigger")
	}
	if d.Reason != ReasonUserInvoked {
		t.Errorf("Reason = %q, want user_invoked", d.Reason)
	}
	if d.Query != "should I take this job offer?" {
		t.Errorf("Query = %q, want invocation token stripped", d.Query)
	}
	if d.Trigger != core.TriggerUser {
		t.Errorf("Trigger = %v, want user_invoked", d.Trigger)
	}
}

func TestEvaluate_BracketFlag(t *testing.T) {
	e := NewTriggerEvaluator()

	d := e.Evaluate("should I refinance? [council]", nil)
	if !d.ShouldTrigger || d.Reason != ReasonUserInvoked {
		t.Fatalf("bracket flag not recognized: %+v", d)
	}
	if d.Query != "should I refinance?" {
		t.Errorf("Query = %q, want flag stripped", d.Query)
	}
}

func TestEvaluate_NaturalInvocationKeepsText(t *testing.T) {
	e := NewTriggerEvaluator()
	query := "I'd like multiple perspectives on this clause"

	d := e.Evaluate(query, nil)
	if !d.ShouldTrigger || d.Reason != ReasonUserInvoked {
		t.Fatalf("natural invocation not recognized: %+v", d)
	}
	if d.Query != query {
		t.Errorf("Query = %q, natural phrasing should stay in the query", d.Query)
	}
}

func TestEvaluate_InvocationBeatsQuota(t *testing.T) {
	e := NewTriggerEvaluator()

	d := e.Evaluate("/council anything", &TriggerContext{Tier: core.TierFree, QueriesUsedToday: 99})
	if !d.ShouldTrigger || d.Reason != ReasonUserInvoked {
		t.Errorf("explicit invocation must win over quota state: %+v", d)
	}
}

func TestEvaluate_NoContext(t *testing.T) {
	e := NewTriggerEvaluator()

	d := e.Evaluate("should I sue my landlord?", nil)
	if d.ShouldTrigger {
		t.Error("auto-trigger requires a session context")
	}
	if d.Reason != ReasonNoContext {
		t.Errorf("Reason = %q, want no_context", d.Reason)
	}
}

func TestEvaluate_TierLimit(t *testing.T) {
	e := NewTriggerEvaluator()

	d := e.Evaluate("should I sue my landlord?", &TriggerContext{Tier: core.TierFree, QueriesUsedToday: 3})
	if d.ShouldTrigger || d.Reason != ReasonTierLimit {
		t.Errorf("exhausted free tier should stop with tier_limit: %+v", d)
	}
	if d.DailyLimit != 3 {
		t.Errorf("DailyLimit = %d, want the blocking tier's limit", d.DailyLimit)
	}
}

func TestEvaluate_FreeTierNoAutoTrigger(t *testing.T) {
	e := NewTriggerEvaluator()

	d := e.Evaluate("should I sue my landlord?", &TriggerContext{Tier: core.TierFree, QueriesUsedToday: 0})
	if d.ShouldTrigger || d.Reason != ReasonAutoTriggerDisabled {
		t.Errorf("free tier must not auto-trigger: %+v", d)
	}
}

func TestEvaluate_EnterpriseUnlimited(t *testing.T) {
	e := NewTriggerEvaluator()

	d := e.Evaluate("should I sue my landlord?", &TriggerContext{Tier: core.TierEnterprise, QueriesUsedToday: 100000})
	if !d.ShouldTrigger {
		t.Errorf("enterprise tier has no daily cap: %+v", d)
	}
}

func TestEvaluate_AutoConditions(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		reason string
	}{
		{"financial threshold", "Should I invest $50,000 in index funds?", ReasonFinancialThreshold},
		{"legal keywords", "Can my employer enforce this contract clause?", ReasonLegalKeywords},
		{"health keywords", "Is this medication dosage safe long term?", ReasonHealthKeywords},
		{"conflicting sources", "I've heard conflicting advice about bonds", ReasonConflictingSources},
		{"novel situation", "This merger is unprecedented in our industry", ReasonNovelSituation},
	}

	e := NewTriggerEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Evaluate(tt.query, proContext())
			if !d.ShouldTrigger {
				t.Fatalf("query should auto-trigger: %+v", d)
			}
			if d.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.reason)
			}
			if d.Trigger != core.TriggerAutomatic {
				t.Errorf("Trigger = %v, want automatic", d.Trigger)
			}
		})
	}
}

func TestEvaluate_ReasonPriority(t *testing.T) {
	e := NewTriggerEvaluator()

	// Financial outranks legal; both conditions are still recorded.
	d := e.Evaluate("Is this $20,000 settlement contract fair?", proContext())
	if d.Reason != ReasonFinancialThreshold {
		t.Errorf("Reason = %q, want financial_threshold first", d.Reason)
	}
	if len(d.Conditions) < 2 {
		t.Errorf("Conditions = %v, want both financial and legal recorded", d.Conditions)
	}
}

func TestEvaluate_BelowThresholdNoTrigger(t *testing.T) {
	e := NewTriggerEvaluator()

	d := e.Evaluate("Should I spend $200 on running shoes?", proContext())
	if d.ShouldTrigger {
		t.Errorf("small amounts must not trigger: %+v", d)
	}
	if d.Reason != ReasonNoTrigger {
		t.Errorf("Reason = %q, want no_trigger", d.Reason)
	}
}

func TestEvaluate_UserPreference(t *testing.T) {
	e := NewTriggerEvaluator()
	tctx := proContext()
	tctx.PreferAggressive = true

	d := e.Evaluate("What color should I paint the kitchen?", tctx)
	if !d.ShouldTrigger || d.Reason != ReasonUserPreference {
		t.Errorf("aggressive preference should trigger plain queries: %+v", d)
	}
}

func TestEvaluate_Complexity(t *testing.T) {
	e := NewTriggerEvaluator()

	// Two domains plus explicit research depth.
	d := e.Evaluate("I need a thorough comparison of the tax and software architecture implications", proContext())
	if !d.ShouldTrigger || d.Reason != ReasonComplexity {
		t.Errorf("multi-domain research query should trigger complexity: %+v", d)
	}

	// Two domains without research depth is not complexity.
	d = e.Evaluate("tax implications of the new software", proContext())
	if d.Reason == ReasonComplexity {
		t.Errorf("breadth without depth must not count as complexity: %+v", d)
	}
}

func TestStripInvocation(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		invoked bool
	}{
		{"command prefix", "/council what now?", "what now?", true},
		{"bracket flag mid-query", "first part [council] second part", "first part second part", true},
		{"no invocation", "plain question", "plain question", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, invoked := StripInvocation(tt.in)
			if got != tt.want || invoked != tt.invoked {
				t.Errorf("StripInvocation(%q) = (%q, %v), want (%q, %v)", tt.in, got, invoked, tt.want, tt.invoked)
			}
		})
	}
}

func TestExtractDollarAmount(t *testing.T) {
	tests := []struct {
		text  string
		want  float64
		found bool
	}{
		{"invest $5,000 in bonds", 5000, true},
		{"a $12k renovation", 12000, true},
		{"raise 1.5 million for the round", 1.5e6, true},
		{"owes 800 dollars", 800, true},
		{"costs $2,500.50 per year", 2500.50, true},
		{"between $500 and $80,000", 80000, true},
		{"no figures here", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, found := ExtractDollarAmount(tt.text)
			if got != tt.want || found != tt.found {
				t.Errorf("ExtractDollarAmount(%q) = (%v, %v), want (%v, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}
