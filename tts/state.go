package tts

// StateType represents the current state of a speak request.
type StateType int

const (
	// StateIdle indicates no request is in flight.
	StateIdle StateType = iota
	// StateStreaming indicates chunks are being consumed from the engine.
	StateStreaming
	// StateAssembling indicates the stream completed and the container
	// is being finalized.
	StateAssembling
	// StatePlaying indicates audio is playing and the word cursor is live.
	StatePlaying
	// StateFailed indicates the request ended in an error.
	StateFailed
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateAssembling:
		return "assembling"
	case StatePlaying:
		return "playing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateMachine manages state transitions for one speak request at a
// time. Transitions outside the table are rejected, never applied
// partially.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
}

// NewStateMachine creates a state machine in StateIdle with the valid
// transition table.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:       {StateStreaming},
			StateStreaming:  {StateAssembling, StateFailed, StateIdle},
			StateAssembling: {StatePlaying, StateFailed},
			StatePlaying:    {StateIdle, StateFailed},
			StateFailed:     {StateIdle, StateStreaming},
		},
	}
}

// Transition attempts to move to the given state and reports whether
// the transition was valid.
func (sm *StateMachine) Transition(to StateType) bool {
	for _, next := range sm.transitions[sm.current] {
		if next == to {
			sm.current = to
			return true
		}
	}
	return false
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}
