package camship

import (
	"sync"

	"github.com/camlabs/camship/internal/app"
	"github.com/camlabs/camship/internal/domain"
)

// State represents the lifecycle state of the agent.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SessionEvent describes a transport session transition.
type SessionEvent struct {
	Previous SessionState
	Current  SessionState
}

// FrameSentEvent describes one successfully shipped frame.
type FrameSentEvent struct {
	Bytes int
	FPS   float64
}

// EventHandler receives agent events. Methods are called synchronously
// from the agent's goroutines; implementations must not block.
type EventHandler interface {
	// OnStateChange is called on lifecycle transitions.
	OnStateChange(event StateChangeEvent)

	// OnSessionChange is called on transport session transitions.
	OnSessionChange(event SessionEvent)

	// OnFrameSent is called after each frame is shipped.
	OnFrameSent(event FrameSentEvent)

	// OnSendError is called when a send fails and the session drops.
	OnSendError(err error)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter
// interfaces and tracks the last observed session state for Session().
type eventEmitterWrapper struct {
	handler EventHandler

	mu      sync.RWMutex
	session domain.SessionState
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSessionState(previous, current domain.SessionState) {
	e.mu.Lock()
	e.session = current
	e.mu.Unlock()

	if e.handler == nil {
		return
	}
	e.handler.OnSessionChange(SessionEvent{Previous: previous, Current: current})
}

func (e *eventEmitterWrapper) OnFrameSent(size int, fps float64) {
	if e.handler == nil {
		return
	}
	e.handler.OnFrameSent(FrameSentEvent{Bytes: size, FPS: fps})
}

func (e *eventEmitterWrapper) OnSendError(err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(err)
}

func (e *eventEmitterWrapper) sessionState() domain.SessionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
