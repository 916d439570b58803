// Package reveal implements the recipient-facing reveal sequence: a strictly
// forward-only phase machine advanced by timers or explicit user actions,
// with the typewriter text effect and exclusive ownership of background
// audio.
package reveal

// Phase represents a stage of the reveal sequence.
type Phase string

const (
	// PhaseLocked is shown while the date gate reports not-eligible.
	PhaseLocked Phase = "locked"
	// PhaseBlackfade is the brief dark loading beat after the gate passes.
	PhaseBlackfade Phase = "blackfade"
	// PhaseGreeting shows the birthday greeting.
	PhaseGreeting Phase = "greeting"
	// PhaseMemories walks the ordered memory list, one at a time.
	PhaseMemories Phase = "memories"
	// PhaseSurprise waits for the recipient to open the final letter.
	PhaseSurprise Phase = "surprise"
	// PhaseLetter shows the final letter.
	PhaseLetter Phase = "letter"
	// PhaseDashboard is the closing screen; leaving it exits the flow.
	PhaseDashboard Phase = "dashboard"
)

// phaseOrder gives each phase its position in the forward-only sequence.
var phaseOrder = map[Phase]int{
	PhaseLocked:    0,
	PhaseBlackfade: 1,
	PhaseGreeting:  2,
	PhaseMemories:  3,
	PhaseSurprise:  4,
	PhaseLetter:    5,
	PhaseDashboard: 6,
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsValid returns true if the phase is one of the defined sequence stages.
func (p Phase) IsValid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// CanAdvanceTo reports whether next is a legal transition from p. The
// sequence never moves backwards and never skips except locked→blackfade
// (taken when eligibility arrives while waiting).
func (p Phase) CanAdvanceTo(next Phase) bool {
	cur, ok1 := phaseOrder[p]
	nxt, ok2 := phaseOrder[next]
	if !ok1 || !ok2 {
		return false
	}
	return nxt == cur+1 || (p == PhaseLocked && next == PhaseBlackfade)
}

// musicPhases are the phases during which background music plays.
var musicPhases = map[Phase]bool{
	PhaseGreeting: true,
	PhaseMemories: true,
	PhaseSurprise: true,
	PhaseLetter:   true,
}

// WantsMusic reports whether background music should be playing in this phase.
func (p Phase) WantsMusic() bool {
	return musicPhases[p]
}
