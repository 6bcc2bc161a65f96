package council

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/council-mode/council/internal/core"
)

// SharedContext is the context slice common to every model in a dispatch.
type SharedContext struct {
	Query          string
	Intent         core.QueryType
	KeyConstraints []string
}

// SpecializedContext is the per-model slice layered on the shared context.
// The history filter reflects each provider's strengths; given the same
// input history the slice is always the same.
type SpecializedContext struct {
	Shared  SharedContext
	ModelID string
	History []core.Message
	Focus   string
}

var constraintPattern = regexp.MustCompile(`(?i)\b(must|need to|have to|budget|deadline|within|no more than|at least|required)\b`)

const (
	recentHistoryWindow  = 10
	defaultHistoryWindow = 5
)

// BuildSharedContext extracts the intent and key constraints every model
// receives.
func BuildSharedContext(query string) SharedContext {
	constraints := make([]string, 0, 3)
	for _, sentence := range splitSentences(query) {
		if constraintPattern.MatchString(sentence) {
			constraints = append(constraints, sentence)
		}
	}
	return SharedContext{
		Query:          query,
		Intent:         PrimaryQueryType(query),
		KeyConstraints: constraints,
	}
}

// SpecializeContext selects the history slice for one model. Claude gets
// reasoning-style turns, GPT research-style turns, Gemini the broad recent
// window; unknown providers get a short recent window.
func SpecializeContext(shared SharedContext, modelID string, history []core.Message) SpecializedContext {
	sc := SpecializedContext{Shared: shared, ModelID: modelID}

	switch modelID {
	case "claude":
		sc.History = filterHistory(history, reasoningQueryPattern, recentHistoryWindow)
		sc.Focus = "step-by-step reasoning and explicit trade-offs"
	case "gpt":
		sc.History = filterHistory(history, researchQueryPattern, recentHistoryWindow)
		sc.Focus = "recent research and cited evidence"
	case "gemini":
		sc.History = lastMessages(history, recentHistoryWindow)
		sc.Focus = "broad context and current information"
	default:
		sc.History = lastMessages(history, defaultHistoryWindow)
		sc.Focus = "a balanced, complete answer"
	}
	return sc
}

// PromptContext renders the specialized context into the adapter contract.
func (sc SpecializedContext) PromptContext() *core.PromptContext {
	var b strings.Builder
	fmt.Fprintf(&b, "You are one voice in a council of AI models answering a %s question. Focus on %s.", sc.Shared.Intent, sc.Focus)
	if len(sc.Shared.KeyConstraints) > 0 {
		b.WriteString(" Honor these constraints: ")
		b.WriteString(strings.Join(sc.Shared.KeyConstraints, "; "))
		b.WriteString(".")
	}
	return &core.PromptContext{
		SystemPrompt: b.String(),
		History:      sc.History,
	}
}

// filterHistory keeps messages matching the pattern, newest last, falling
// back to the recent window when nothing matches.
func filterHistory(history []core.Message, pattern *regexp.Regexp, limit int) []core.Message {
	matched := make([]core.Message, 0, len(history))
	for _, m := range history {
		if pattern.MatchString(m.Content) {
			matched = append(matched, m)
		}
	}
	if len(matched) == 0 {
		return lastMessages(history, limit)
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

func lastMessages(history []core.Message, limit int) []core.Message {
	if len(history) <= limit {
		out := make([]core.Message, len(history))
		copy(out, history)
		return out
	}
	out := make([]core.Message, limit)
	copy(out, history[len(history)-limit:])
	return out
}
