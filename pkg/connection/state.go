package connection

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned for a state change the scope state
// machine does not allow.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is the connection state of one client scope.
type State uint8

const (
	// StateIdle indicates the scope is configured but not started.
	StateIdle State = iota

	// StateDiscovering indicates a dynamic scope is waiting for a broker
	// to be discovered.
	StateDiscovering

	// StateConnecting indicates a first connection attempt is in progress.
	StateConnecting

	// StateConnected indicates the broker accepted the connection.
	StateConnected

	// StateRetrying indicates a recoverable failure; another attempt is
	// pending behind the backoff delay.
	StateRetrying

	// StateFatal indicates a fatal failure. No attempts are made until the
	// scope is reconfigured.
	StateFatal
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateDiscovering:
		return "DISCOVERING"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateRetrying:
		return "RETRYING"
	case StateFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// IsAttempting reports whether a connection attempt is outstanding.
func (s State) IsAttempting() bool {
	return s == StateConnecting || s == StateRetrying
}

var transitions = map[State][]State{
	StateIdle:        {StateDiscovering, StateConnecting},
	StateDiscovering: {StateConnecting, StateIdle},
	StateConnecting:  {StateConnected, StateRetrying, StateDiscovering, StateFatal, StateIdle},
	StateConnected:   {StateRetrying, StateConnecting, StateDiscovering, StateFatal, StateIdle},
	StateRetrying:    {StateConnected, StateRetrying, StateDiscovering, StateFatal, StateIdle},
	StateFatal:       {StateIdle},
}

// CanTransition reports whether the scope state machine allows from -> to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Machine tracks the state of one scope and reports changes.
type Machine struct {
	mu            sync.Mutex
	state         State
	onStateChange func(old, new State, reason string)
}

// NewMachine returns a machine in StateIdle.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnStateChange sets a callback invoked after every transition.
func (m *Machine) OnStateChange(fn func(old, new State, reason string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// Transition moves the machine to state to. Disallowed transitions leave
// the state unchanged and return ErrInvalidTransition.
func (m *Machine) Transition(to State, reason string) error {
	m.mu.Lock()
	from := m.state
	if !CanTransition(from, to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	m.state = to
	cb := m.onStateChange
	m.mu.Unlock()

	if cb != nil {
		cb(from, to, reason)
	}
	return nil
}
