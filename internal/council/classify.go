package council

import (
	"regexp"

	"github.com/council-mode/council/internal/core"
)

var (
	reasoningQueryPattern = regexp.MustCompile(`(?i)\b(why|explain|prove|logic|reason|step[- ]by[- ]step|trade[- ]?offs?|compare|derive)\b`)
	researchQueryPattern  = regexp.MustCompile(`(?i)\b(research|study|studies|literature|in[- ]depth|comprehensive|thorough|evidence|sources)\b`)
	currentQueryPattern   = regexp.MustCompile(`(?i)\b(latest|today|news|recent|current|this (year|month|week)|right now|2\d{3})\b`)
)

// ClassifyQuery tags a query with the categories it matches, primary tag
// first. A query that matches nothing is tagged general. The primary tag
// drives the specialty weight lookup; the full tag set is recorded on the
// deliberation.
func ClassifyQuery(query string) []core.QueryType {
	tags := make([]core.QueryType, 0, 3)
	if currentQueryPattern.MatchString(query) {
		tags = append(tags, core.QueryCurrentEvents)
	}
	if researchQueryPattern.MatchString(query) {
		tags = append(tags, core.QueryResearch)
	}
	if reasoningQueryPattern.MatchString(query) {
		tags = append(tags, core.QueryReasoning)
	}
	if len(tags) == 0 {
		tags = append(tags, core.QueryGeneral)
	}
	return tags
}

// PrimaryQueryType returns the single category used for weighting.
func PrimaryQueryType(query string) core.QueryType {
	return ClassifyQuery(query)[0]
}
