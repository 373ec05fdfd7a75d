package assistant

import (
	"fmt"
	"strings"
)

// State is the listing flow position. The language model handles phrasing
// and field extraction; transitions between states are enforced here, not
// left to prose instructions.
type State int

const (
	// StateIdle waits for the trigger phrase.
	StateIdle State = iota
	// StateCollecting gathers the four required fields one at a time.
	StateCollecting
	// StateCreating has all fields and is waiting on the persistence call.
	StateCreating
	// StateAwaitingNext offers a new listing or pushing to the live show.
	StateAwaitingNext
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateCreating:
		return "creating"
	case StateAwaitingNext:
		return "awaiting-next"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event drives state transitions.
type Event int

const (
	// EventTrigger is the user saying "add product".
	EventTrigger Event = iota
	// EventCreateRequested fires when the model invokes create_product.
	EventCreateRequested
	// EventCreateSucceeded / EventCreateFailed report the persistence result.
	EventCreateSucceeded
	EventCreateFailed
)

func (e Event) String() string {
	switch e {
	case EventTrigger:
		return "trigger"
	case EventCreateRequested:
		return "create-requested"
	case EventCreateSucceeded:
		return "create-succeeded"
	case EventCreateFailed:
		return "create-failed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// transitions is the allowed state/event table. Absent entries are invalid.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventTrigger: StateCollecting,
	},
	StateCollecting: {
		EventCreateRequested: StateCreating,
	},
	StateCreating: {
		EventCreateSucceeded: StateAwaitingNext,
		// a failed insert keeps the collected fields and lets the user retry
		EventCreateFailed: StateCollecting,
	},
	StateAwaitingNext: {
		// "add product" starts the next listing cycle
		EventTrigger: StateCollecting,
	},
}

// Machine is the explicit listing-flow state machine for one voice session.
type Machine struct {
	state State
}

// NewMachine starts in Idle.
func NewMachine() *Machine { return &Machine{state: StateIdle} }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Apply performs a transition, failing on events not valid for the current
// state.
func (m *Machine) Apply(ev Event) error {
	next, ok := transitions[m.state][ev]
	if !ok {
		return fmt.Errorf("event %s not valid in state %s", ev, m.state)
	}
	m.state = next
	return nil
}

// triggerPhrase starts (or restarts) the listing flow.
const triggerPhrase = "add product"

// HeardTrigger reports whether the transcript contains the trigger phrase.
// "add product to show" is the carousel command, not a new listing trigger.
func HeardTrigger(transcript string) bool {
	t := strings.ToLower(transcript)
	if strings.Contains(t, triggerPhrase+" to show") {
		return false
	}
	return strings.Contains(t, triggerPhrase)
}

// ProductFields is the validated structured record the model extracts into.
type ProductFields struct {
	Name     string
	Weight   float64 // ounces
	Price    float64 // USD
	Quantity int
}

// Validate checks the field constraints before any network call is made.
func (f ProductFields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if f.Weight <= 0 {
		return fmt.Errorf("weight must be greater than zero ounces")
	}
	if f.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if f.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	return nil
}
