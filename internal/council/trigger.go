package council

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/council-mode/council/internal/core"
)

// Trigger reason codes, in evaluation priority order. Exactly one is
// surfaced per decision even when several conditions hold.
const (
	ReasonUserInvoked         = "user_invoked"
	ReasonNoContext           = "no_context"
	ReasonTierLimit           = "tier_limit"
	ReasonAutoTriggerDisabled = "auto_trigger_disabled"
	ReasonFinancialThreshold  = "financial_threshold"
	ReasonLegalKeywords       = "legal_keywords"
	ReasonHealthKeywords      = "health_keywords"
	ReasonComplexity          = "complexity"
	ReasonConflictingSources  = "conflicting_sources"
	ReasonNovelSituation      = "novel_situation"
	ReasonUserPreference      = "user_preference"
	ReasonNoTrigger           = "no_trigger"
)

// FinancialThresholdUSD is the canonical dollar amount above which a query
// counts as high-stakes.
const FinancialThresholdUSD = 10000.0

// TierPolicy controls council availability for one subscription tier.
type TierPolicy struct {
	DailyLimit  int // -1 means unlimited
	AutoTrigger bool
}

// DefaultTierPolicies returns the built-in per-tier limits.
func DefaultTierPolicies() map[core.Tier]TierPolicy {
	return map[core.Tier]TierPolicy{
		core.TierFree:       {DailyLimit: 3, AutoTrigger: false},
		core.TierPro:        {DailyLimit: 25, AutoTrigger: true},
		core.TierEnterprise: {DailyLimit: -1, AutoTrigger: true},
	}
}

// TriggerContext carries the user/session facts the evaluator needs. A nil
// context means no known user: only explicit invocation can trigger.
type TriggerContext struct {
	UserID           string
	Tier             core.Tier
	QueriesUsedToday int
	PreferAggressive bool // explicit user preference for council usage
}

// Decision is the evaluator's verdict.
type Decision struct {
	ShouldTrigger bool
	Reason        string
	Query         string // query with any invocation token stripped
	Conditions    []string
	Trigger       core.TriggerType
	DailyLimit    int // the effective tier limit when Reason is tier_limit
}

var (
	commandPrefixPattern = regexp.MustCompile(`^\s*/council\b\s*`)
	bracketFlagPattern   = regexp.MustCompile(`\s*\[council\]\s*`)
	naturalInvokePattern = regexp.MustCompile(`(?i)\b(ask (the )?council|multiple perspectives|what do (different|other) models think|compare (model )?answers|get a second opinion from)\b`)

	legalKeywordPattern  = regexp.MustCompile(`(?i)\b(lawsuit|legal|contract|liability|sue|attorney|lawyer|compliance|regulation|court)\b`)
	healthKeywordPattern = regexp.MustCompile(`(?i)\b(diagnosis|symptom|treatment|medication|surgery|disease|therapy|dosage|side effects?)\b`)

	domainPatterns = map[string]*regexp.Regexp{
		"financial":    regexp.MustCompile(`(?i)\b(invest|money|salary|budget|tax|loan|mortgage|retirement|stock)\b`),
		"legal":        legalKeywordPattern,
		"medical":      healthKeywordPattern,
		"technical":    regexp.MustCompile(`(?i)\b(software|architecture|database|algorithm|infrastructure|deploy|server)\b`),
		"career":       regexp.MustCompile(`(?i)\b(career|job offer|promotion|resign|interview|relocat)\b`),
		"relationship": regexp.MustCompile(`(?i)\b(marriage|divorce|partner|family decision|custody)\b`),
	}

	researchDepthPattern = regexp.MustCompile(`(?i)\b(in[- ]depth|research|comprehensive|thorough(ly)?|detailed analysis|deep dive|exhaustive)\b`)

	conflictingSourcePattern = regexp.MustCompile(`(?i)\b(conflicting|contradictory|some (say|sources)|sources disagree|mixed (advice|opinions)|can't agree|heard different)\b`)
	novelSituationPattern    = regexp.MustCompile(`(?i)\b(unprecedented|never (been done|seen|happened)|novel situation|no precedent|first of its kind|unusual (case|situation))\b`)

	moneyPattern = regexp.MustCompile(`(?i)\$\s*([\d][\d,]*(?:\.\d+)?)\s*(k|thousand|m|million|mm|b|billion)?|\b([\d][\d,]*(?:\.\d+)?)\s*(k|thousand|million|billion)\b|\b([\d][\d,]*(?:\.\d+)?)\s+dollars\b`)
)

// TriggerEvaluator decides whether the full deliberation pipeline runs for
// a query, and why.
type TriggerEvaluator struct {
	policies  map[core.Tier]TierPolicy
	threshold float64
}

// NewTriggerEvaluator creates an evaluator with the default tier policies.
func NewTriggerEvaluator() *TriggerEvaluator {
	return &TriggerEvaluator{
		policies:  DefaultTierPolicies(),
		threshold: FinancialThresholdUSD,
	}
}

// NewTriggerEvaluatorWithPolicies creates an evaluator with explicit tier
// policies and financial threshold.
func NewTriggerEvaluatorWithPolicies(policies map[core.Tier]TierPolicy, threshold float64) *TriggerEvaluator {
	return &TriggerEvaluator{policies: policies, threshold: threshold}
}

// Evaluate applies invocation, quota and auto-trigger rules in priority
// order. User invocation always wins; quota exhaustion is terminal.
func (e *TriggerEvaluator) Evaluate(query string, tctx *TriggerContext) Decision {
	if stripped, invoked := StripInvocation(query); invoked {
		return Decision{
			ShouldTrigger: true,
			Reason:        ReasonUserInvoked,
			Query:         stripped,
			Conditions:    []string{ReasonUserInvoked},
			Trigger:       core.TriggerUser,
		}
	}

	if tctx == nil {
		return Decision{Reason: ReasonNoContext, Query: query}
	}

	policy, ok := e.policies[tctx.Tier]
	if !ok {
		policy = e.policies[core.TierFree]
	}

	if policy.DailyLimit >= 0 && tctx.QueriesUsedToday >= policy.DailyLimit {
		return Decision{Reason: ReasonTierLimit, Query: query, DailyLimit: policy.DailyLimit}
	}

	if !policy.AutoTrigger {
		return Decision{Reason: ReasonAutoTriggerDisabled, Query: query}
	}

	conditions := e.autoConditions(query, tctx)
	if len(conditions) == 0 {
		return Decision{Reason: ReasonNoTrigger, Query: query}
	}

	return Decision{
		ShouldTrigger: true,
		Reason:        conditions[0],
		Query:         query,
		Conditions:    conditions,
		Trigger:       core.TriggerAutomatic,
	}
}

// autoConditions collects every matched condition, ordered by priority:
// high-stakes, complexity, uncertainty, explicit preference.
func (e *TriggerEvaluator) autoConditions(query string, tctx *TriggerContext) []string {
	var conditions []string

	if amount, ok := ExtractDollarAmount(query); ok && amount >= e.threshold {
		conditions = append(conditions, ReasonFinancialThreshold)
	}
	if legalKeywordPattern.MatchString(query) {
		conditions = append(conditions, ReasonLegalKeywords)
	}
	if healthKeywordPattern.MatchString(query) {
		conditions = append(conditions, ReasonHealthKeywords)
	}

	// Complexity requires both breadth and explicit research depth.
	if countDomains(query) >= 2 && researchDepthPattern.MatchString(query) {
		conditions = append(conditions, ReasonComplexity)
	}

	if conflictingSourcePattern.MatchString(query) {
		conditions = append(conditions, ReasonConflictingSources)
	}
	if novelSituationPattern.MatchString(query) {
		conditions = append(conditions, ReasonNovelSituation)
	}

	if tctx.PreferAggressive {
		conditions = append(conditions, ReasonUserPreference)
	}

	return conditions
}

// StripInvocation removes an explicit council invocation token from the
// query and reports whether one was present.
func StripInvocation(query string) (string, bool) {
	if commandPrefixPattern.MatchString(query) {
		return strings.TrimSpace(commandPrefixPattern.ReplaceAllString(query, "")), true
	}
	if bracketFlagPattern.MatchString(query) {
		return strings.TrimSpace(bracketFlagPattern.ReplaceAllString(query, " ")), true
	}
	if naturalInvokePattern.MatchString(query) {
		// Natural phrasings stay in the query; they read as part of the
		// request rather than as a control token.
		return strings.TrimSpace(query), true
	}
	return query, false
}

func countDomains(query string) int {
	n := 0
	for _, p := range domainPatterns {
		if p.MatchString(query) {
			n++
		}
	}
	return n
}

// ExtractDollarAmount parses the largest dollar amount in the text into a
// canonical value. It understands bare numbers with a $ sign, comma
// grouping, and k/thousand/million/billion suffixes.
func ExtractDollarAmount(text string) (float64, bool) {
	matches := moneyPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}

	best := 0.0
	found := false
	for _, m := range matches {
		var numStr, suffix string
		switch {
		case m[1] != "":
			numStr, suffix = m[1], m[2]
		case m[3] != "":
			numStr, suffix = m[3], m[4]
		default:
			numStr = m[5]
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(numStr, ",", ""), 64)
		if err != nil {
			continue
		}
		value *= suffixMultiplier(suffix)

		found = true
		if value > best {
			best = value
		}
	}
	return best, found
}

func suffixMultiplier(suffix string) float64 {
	switch strings.ToLower(suffix) {
	case "k", "thousand":
		return 1e3
	case "m", "mm", "million":
		return 1e6
	case "b", "billion":
		return 1e9
	default:
		return 1
	}
}
