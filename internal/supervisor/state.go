// Package supervisor runs a fixed table of child processes through two
// sequential phases, multiplexing their output and driving group teardown.
package supervisor

// Phase identifies which of the two sequential supervision stages is active.
type Phase int

const (
	// PhaseCheck runs only startup-check children; all must exit zero.
	PhaseCheck Phase = iota

	// PhaseNormal runs the long-lived children; any exit tears the group down.
	PhaseNormal
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCheck:
		return "check"
	case PhaseNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// TeardownState is the position of the teardown state machine.
type TeardownState int

const (
	// StateRunning means no teardown has been initiated.
	StateRunning TeardownState = iota

	// StateSoftTeardown means children have been asked to exit and the
	// escalation timer is armed.
	StateSoftTeardown

	// StateHardTeardown is terminal: remaining children are killed and the
	// supervisor exits.
	StateHardTeardown
)

// String returns a human-readable name for the state.
func (s TeardownState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSoftTeardown:
		return "soft_teardown"
	case StateHardTeardown:
		return "hard_teardown"
	default:
		return "unknown"
	}
}
