package domain

// Phase represents the current lifecycle stage of the race
type Phase string

const (
	PhaseIdle         Phase = "IDLE"          // Lobby open, race text chosen, waiting for a start request
	PhaseCountingDown Phase = "COUNTING_DOWN" // Countdown ticks are being broadcast
	PhaseRunning      Phase = "RUNNING"       // Participants are typing
	PhaseFinished     Phase = "FINISHED"      // A winner was declared, waiting for reset
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid.
// Resets are not listed here: RaceState.Reset returns to idle from any phase.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseIdle:         {PhaseCountingDown},
		PhaseCountingDown: {PhaseRunning},
		PhaseRunning:      {PhaseFinished},
		PhaseFinished:     {PhaseIdle},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// AcceptsProgress returns true if progress updates may mutate the race in this phase
func (p Phase) AcceptsProgress() bool {
	return p == PhaseRunning
}
