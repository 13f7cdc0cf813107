package workflows

// StateMachine enforces transitions between named states
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a state machine from an explicit transition table
func NewStateMachine(transitions map[string][]string) *StateMachine {
	allowed := make(map[string][]string, len(transitions))
	for from, to := range transitions {
		allowed[from] = append([]string(nil), to...)
	}
	return &StateMachine{allowedTransitions: allowed}
}

// NewLinearStateMachine creates a state machine where each state may only
// move to the one after it. The last state is terminal.
func NewLinearStateMachine(states []string) *StateMachine {
	transitions := make(map[string][]string, len(states))
	for i, state := range states {
		if i+1 < len(states) {
			transitions[state] = []string{states[i+1]}
		} else {
			transitions[state] = []string{}
		}
	}
	return NewStateMachine(transitions)
}

// CanTransition checks if a transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next states for a given state
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return append([]string(nil), allowed...)
}

// Knows reports whether state appears in the transition table
func (sm *StateMachine) Knows(state string) bool {
	_, exists := sm.allowedTransitions[state]
	return exists
}
