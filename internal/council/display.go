package council

import (
	"github.com/council-mode/council/internal/core"
)

// displayTransitions is the explicit adjacency table for progressive
// disclosure. All four states are mutually reachable; self-transitions are
// not legal moves.
var displayTransitions = map[core.DisplayState][]core.DisplayState{
	core.DisplayDefault:      {core.DisplayExpanded, core.DisplayDisagreement, core.DisplayFullLog},
	core.DisplayExpanded:     {core.DisplayDefault, core.DisplayDisagreement, core.DisplayFullLog},
	core.DisplayDisagreement: {core.DisplayDefault, core.DisplayExpanded, core.DisplayFullLog},
	core.DisplayFullLog:      {core.DisplayDefault, core.DisplayExpanded, core.DisplayDisagreement},
}

// InitialDisplayState chooses the opening presentation for a finished
// deliberation. Split agreement, or low agreement with at least one
// divergent point, opens on the disagreement view so the conflict is never
// hidden behind a click.
func InitialDisplayState(d *core.CouncilDeliberation) core.DisplayState {
	switch {
	case d.Agreement.Level == core.AgreementSplit:
		return core.DisplayDisagreement
	case d.Agreement.Level == core.AgreementLow && len(d.Agreement.DivergentPoints) > 0:
		return core.DisplayDisagreement
	default:
		return core.DisplayDefault
	}
}

// CanTransition reports whether moving from one display state to another is
// a legal UI affordance.
func CanTransition(from, to core.DisplayState) bool {
	for _, next := range displayTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transitions returns the legal next states from a given state, so a caller
// can validate affordances before offering them.
func Transitions(from core.DisplayState) []core.DisplayState {
	next, ok := displayTransitions[from]
	if !ok {
		return nil
	}
	out := make([]core.DisplayState, len(next))
	copy(out, next)
	return out
}

// DisplayStates lists every presentation state.
func DisplayStates() []core.DisplayState {
	return []core.DisplayState{
		core.DisplayDefault,
		core.DisplayExpanded,
		core.DisplayDisagreement,
		core.DisplayFullLog,
	}
}
