package domain

// Phase represents the stored stage of a room
type Phase string

const (
	PhaseLobby   Phase = "lobby"   // Players gather and ready up
	PhasePlaying Phase = "playing" // Roles assigned, discussion under the round timer
	PhaseVoting  Phase = "voting"  // Everyone online names a suspect
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid.
// Results are not a phase: ending a round reports them and lands back in the lobby.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:   {PhasePlaying},
		PhasePlaying: {PhaseVoting, PhaseLobby}, // Timer/vote call, or the spy's guess
		PhaseVoting:  {PhaseLobby},
	}

	for _, phase := range validTransitions[p] {
		if phase == target {
			return true
		}
	}
	return false
}
