package ports

import "context"

// EventKind identifies an inbound transport event.
type EventKind int

const (
	// EventOpened signals that the connection handshake completed.
	EventOpened EventKind = iota

	// EventClosed signals that the connection was closed or lost.
	EventClosed

	// EventPing signals an inbound protocol ping. The transport answers
	// it with a pong; the event is surfaced for observability.
	EventPing

	// EventPong signals an inbound protocol pong.
	EventPong

	// EventText signals an inbound text message; Event.Text carries it.
	EventText
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "Opened"
	case EventClosed:
		return "Closed"
	case EventPing:
		return "Ping"
	case EventPong:
		return "Pong"
	case EventText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Event is a single inbound transport event.
type Event struct {
	Kind EventKind

	// Text is the message payload for EventText, the application data
	// for EventPing/EventPong, and the close reason for EventClosed.
	Text string
}

// EventHandler consumes inbound events. It is invoked synchronously
// from Poll, on the streaming loop's goroutine.
type EventHandler func(Event)

// Transport owns a single connection to the stream server.
// Implementations must queue inbound events internally so that Poll
// never blocks; events are dispatched only during Poll, which keeps all
// session-state mutation on the loop's goroutine.
type Transport interface {
	// Connect dials the server and performs the handshake, injecting the
	// bearer token and device identity headers. The device must already
	// have network association; Connect fails otherwise.
	Connect(ctx context.Context) error

	// SendText sends one text (JSON) message.
	SendText(data []byte) error

	// SendBinary sends one binary payload.
	SendBinary(data []byte) error

	// Poll dispatches all queued inbound events to the handler and
	// returns. It never blocks waiting for the server.
	Poll(handler EventHandler)

	// Close tears down the connection. Safe to call when disconnected.
	Close() error
}
