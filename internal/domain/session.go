package domain

// SessionState is the connection state of the device's transport session.
// Exactly one session exists per device; transitions are driven by
// transport events and message content, always from the streaming loop.
type SessionState int

const (
	// StateDisconnected means no transport connection exists.
	StateDisconnected SessionState = iota

	// StateConnecting means a connect attempt is in flight.
	StateConnecting

	// StateConnected means the transport handshake completed but the
	// server has not yet acknowledged the device.
	StateConnected

	// StateAuthenticated means the server acknowledged the device and
	// application messages may flow.
	StateAuthenticated
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateAuthenticated:
		return "Authenticated"
	default:
		return "Unknown"
	}
}

// Online reports whether frames and heartbeats may be sent in this state.
func (s SessionState) Online() bool {
	return s == StateConnected || s == StateAuthenticated
}
