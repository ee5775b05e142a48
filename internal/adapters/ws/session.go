// Package ws implements the transport port over a WebSocket connection
// using gorilla/websocket.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/camlabs/camship/internal/domain"
	"github.com/camlabs/camship/internal/ports"
)

// Default tunables for the session.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultQueueSize        = 64
)

// Config describes the server endpoint and the identity headers injected
// at handshake time.
type Config struct {
	Host   string
	Port   int
	Path   string
	Secure bool

	AuthToken     string
	DeviceType    string
	DeviceID      string
	DeviceVersion string

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	// QueueSize bounds the inbound event queue drained by Poll.
	QueueSize int
}

// Session owns a single WebSocket connection. Inbound traffic is read by
// one goroutine and queued as events; Poll drains the queue without
// blocking, so all event handling happens on the caller's goroutine.
type Session struct {
	cfg     Config
	network ports.Network
	logger  ports.Logger
	dialer  *websocket.Dialer

	events     chan ports.Event
	readerDone chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewSession creates a disconnected session for the given endpoint.
func NewSession(cfg Config, network ports.Network, logger ports.Logger) *Session {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return &Session{
		cfg:     cfg,
		network: network,
		logger:  logger,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		events: make(chan ports.Event, cfg.QueueSize),
	}
}

// URL returns the endpoint the session dials.
func (s *Session) URL() string {
	scheme := "ws"
	if s.cfg.Secure {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port),
		Path:   s.cfg.Path,
	}
	return u.String()
}

// Connect dials the server with the identity headers and starts the
// reader. It fails when network association is not established. Events
// queued by a previous connection are discarded first.
func (s *Session) Connect(ctx context.Context) error {
	if !s.network.Ready() {
		return fmt.Errorf("connect: network not associated")
	}

	s.Close()
	if s.readerDone != nil {
		<-s.readerDone
	}
	s.drain()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.cfg.AuthToken)
	header.Set("X-Device-Type", s.cfg.DeviceType)
	header.Set("X-Device-ID", s.cfg.DeviceID)
	header.Set("X-Device-Version", s.cfg.DeviceVersion)
	header.Set("X-Connection-Type", "WebSocket")

	conn, resp, err := s.dialer.DialContext(ctx, s.URL(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %w (status %d)", s.URL(), err, resp.StatusCode)
		}
		return fmt.Errorf("dial %s: %w", s.URL(), err)
	}

	conn.SetPingHandler(func(appData string) error {
		s.enqueue(ports.Event{Kind: ports.EventPing, Text: appData})
		deadline := time.Now().Add(s.cfg.WriteTimeout)
		return conn.WriteControl(websocket.PongMessage, []byte(appData), deadline)
	})
	conn.SetPongHandler(func(appData string) error {
		s.enqueue(ports.Event{Kind: ports.EventPong, Text: appData})
		return nil
	})

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.enqueue(ports.Event{Kind: ports.EventOpened})

	s.readerDone = make(chan struct{})
	go s.readLoop(conn, s.readerDone)

	return nil
}

// readLoop reads inbound messages until the connection dies, queuing
// text messages and a final close event.
func (s *Session) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.enqueue(ports.Event{Kind: ports.EventClosed, Text: err.Error()})
			return
		}
		if msgType == websocket.TextMessage {
			s.enqueue(ports.Event{Kind: ports.EventText, Text: string(data)})
		}
	}
}

// enqueue adds an event to the queue, dropping it when the queue is
// full. The loop polls every frame interval, so a full queue means the
// loop is wedged; dropping is preferable to blocking the reader.
func (s *Session) enqueue(ev ports.Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("event queue full, dropping event",
			ports.String("kind", ev.Kind.String()),
		)
	}
}

// drain discards queued events from a previous connection.
func (s *Session) drain() {
	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

// Poll dispatches all queued events to the handler without blocking.
func (s *Session) Poll(handler ports.EventHandler) {
	for {
		select {
		case ev := <-s.events:
			handler(ev)
		default:
			return
		}
	}
}

// SendText sends one text message.
func (s *Session) SendText(data []byte) error {
	return s.write(websocket.TextMessage, data)
}

// SendBinary sends one binary payload.
func (s *Session) SendBinary(data []byte) error {
	return s.write(websocket.BinaryMessage, data)
}

func (s *Session) write(msgType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return domain.ErrNotConnected
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := s.conn.WriteMessage(msgType, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Close tears down the connection. Safe to call when disconnected.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return conn.Close()
}
