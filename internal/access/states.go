// Package access drives guest door codes through the lock vendor's
// asynchronous create, propagate, ready protocol.
package access

// State is a pin's lifecycle state as reported by the lock vendor.
type State string

const (
	// StateRequested is the local initial state before the vendor has
	// confirmed anything.
	StateRequested State = "requested"

	// Transient states: the pin is still propagating to the lock.
	StateCreating State = "creating"
	StateCreated  State = "created"
	StateEnabling State = "enabling"
	StateEnabled  State = "enabled"

	// StateLoaded is the terminal success state: the code works at the door.
	StateLoaded State = "loaded"

	// States a fresh creation should never pass through but which the
	// vendor can report for codes being torn down or rewritten.
	StateDisabling State = "disabling"
	StateDisabled  State = "disabled"
	StateDeleting  State = "deleting"
	StateUpdating  State = "updating"

	// StateMissing is synthesized when no listing entry carries the
	// requested user ID.
	StateMissing State = "missing"
)

// Outcome classifies what the provisioning loop does on observing a state.
type Outcome int

const (
	// OutcomeFatal aborts the provisioning request.
	OutcomeFatal Outcome = iota
	// OutcomeWait polls again after the poll interval.
	OutcomeWait
	// OutcomeReady completes the request successfully.
	OutcomeReady
)

// transitions is the closed transition table for a fresh pin creation.
// States absent from the table are fatal; tolerating a newly observed
// vendor state is a one-line addition here.
var transitions = map[State]Outcome{
	StateCreating: OutcomeWait,
	StateCreated:  OutcomeWait,
	StateEnabling: OutcomeWait,
	StateEnabled:  OutcomeWait,
	StateLoaded:   OutcomeReady,
}

// Classify returns the loop outcome for an observed state.
func Classify(s State) Outcome {
	if outcome, ok := transitions[s]; ok {
		return outcome
	}
	return OutcomeFatal
}
