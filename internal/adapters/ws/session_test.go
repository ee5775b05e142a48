package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/camlabs/camship/internal/domain"
	"github.com/camlabs/camship/internal/ports"
)

type testLogger struct{}

func (testLogger) Debug(msg string, fields ...ports.Field) {}
func (testLogger) Info(msg string, fields ...ports.Field)  {}
func (testLogger) Warn(msg string, fields ...ports.Field)  {}
func (testLogger) Error(msg string, fields ...ports.Field) {}

type staticNetwork struct {
	ready bool
}

func (n staticNetwork) WaitReady(ctx context.Context) error { return nil }
func (n staticNetwork) Ready() bool                         { return n.ready }
func (n staticNetwork) LocalIP() string                     { return "127.0.0.1" }

// echoServer upgrades connections and records handshake headers and
// inbound messages.
type echoServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu       sync.Mutex
	headers  http.Header
	messages []struct {
		msgType int
		data    []byte
	}
	conns []*websocket.Conn

	// onConnect runs on the server side right after the upgrade.
	onConnect func(conn *websocket.Conn)
}

func (e *echoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.t.Errorf("upgrade failed: %v", err)
		return
	}
	e.mu.Lock()
	e.headers = r.Header.Clone()
	e.conns = append(e.conns, conn)
	e.mu.Unlock()

	if e.onConnect != nil {
		e.onConnect(conn)
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		e.mu.Lock()
		e.messages = append(e.messages, struct {
			msgType int
			data    []byte
		}{msgType, append([]byte{}, data...)})
		e.mu.Unlock()
	}
}

func (e *echoServer) receivedHeaders() http.Header {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.headers
}

func (e *echoServer) received() []struct {
	msgType int
	data    []byte
} {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]struct {
		msgType int
		data    []byte
	}, len(e.messages))
	copy(out, e.messages)
	return out
}

func newTestServer(t *testing.T) (*echoServer, *httptest.Server, Config) {
	t.Helper()
	srv := &echoServer{t: t}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	host, portStr, err := net.SplitHostPort(ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := Config{
		Host:          host,
		Port:          port,
		Path:          "/ws",
		AuthToken:     "secret-token",
		DeviceType:    "camship",
		DeviceID:      "cam-01",
		DeviceVersion: "1.0.0",
	}
	return srv, ts, cfg
}

// pollUntil polls the session until the predicate matches a queued event
// or the deadline expires, returning all events seen.
func pollUntil(t *testing.T, s *Session, match func(ports.Event) bool) []ports.Event {
	t.Helper()
	var seen []ports.Event
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		found := false
		s.Poll(func(ev ports.Event) {
			seen = append(seen, ev)
			if match(ev) {
				found = true
			}
		})
		if found {
			return seen
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no matching event before deadline; saw %v", seen)
	return nil
}

func TestSession_URL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"plain", Config{Host: "cctv.local", Port: 80, Path: "/ws"}, "ws://cctv.local:80/ws"},
		{"secure", Config{Host: "cctv.example.com", Port: 443, Path: "/ws", Secure: true}, "wss://cctv.example.com:443/ws"},
		{"custom port", Config{Host: "10.0.0.5", Port: 8765, Path: "/stream"}, "ws://10.0.0.5:8765/stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.cfg, staticNetwork{ready: true}, testLogger{})
			if got := s.URL(); got != tt.want {
				t.Errorf("URL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSession_Connect_RequiresNetwork(t *testing.T) {
	s := NewSession(Config{Host: "cctv.local", Port: 80, Path: "/ws"},
		staticNetwork{ready: false}, testLogger{})

	if err := s.Connect(context.Background()); err == nil {
		t.Fatal("Connect() = nil without network association, want error")
	}
}

func TestSession_Connect_SendsIdentityHeaders(t *testing.T) {
	srv, _, cfg := newTestServer(t)
	s := NewSession(cfg, staticNetwork{ready: true}, testLogger{})
	defer s.Close()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	pollUntil(t, s, func(ev ports.Event) bool { return ev.Kind == ports.EventOpened })

	// The server handler records headers just after the upgrade returns.
	var headers http.Header
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if headers = srv.receivedHeaders(); headers != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if headers == nil {
		t.Fatal("server never recorded handshake headers")
	}
	want := map[string]string{
		"Authorization":     "Bearer secret-token",
		"X-Device-Type":     "camship",
		"X-Device-Id":       "cam-01",
		"X-Device-Version":  "1.0.0",
		"X-Connection-Type": "WebSocket",
	}
	for k, v := range want {
		if got := headers.Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
}

func TestSession_InboundTextIsQueued(t *testing.T) {
	srv, _, cfg := newTestServer(t)
	srv.onConnect = func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connection_ack"}`))
	}
	s := NewSession(cfg, staticNetwork{ready: true}, testLogger{})
	defer s.Close()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	seen := pollUntil(t, s, func(ev ports.Event) bool { return ev.Kind == ports.EventText })

	last := seen[len(seen)-1]
	if last.Text != `{"type":"connection_ack"}` {
		t.Errorf("text payload = %q", last.Text)
	}
	if seen[0].Kind != ports.EventOpened {
		t.Errorf("first event = %v, want Opened", seen[0].Kind)
	}
}

func TestSession_SendTextAndBinary(t *testing.T) {
	srv, _, cfg := newTestServer(t)
	s := NewSession(cfg, staticNetwork{ready: true}, testLogger{})
	defer s.Close()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := s.SendText([]byte(`{"type":"heartbeat"}`)); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	if err := s.SendBinary(jpeg); err != nil {
		t.Fatalf("SendBinary() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(srv.received()) >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	got := srv.received()
	if len(got) != 2 {
		t.Fatalf("server received %d messages, want 2", len(got))
	}
	if got[0].msgType != websocket.TextMessage || string(got[0].data) != `{"type":"heartbeat"}` {
		t.Errorf("message 0 = (%d, %q)", got[0].msgType, got[0].data)
	}
	if got[1].msgType != websocket.BinaryMessage || string(got[1].data) != string(jpeg) {
		t.Errorf("message 1 = (%d, %v)", got[1].msgType, got[1].data)
	}
}

func TestSession_SendWhenDisconnected(t *testing.T) {
	s := NewSession(Config{Host: "cctv.local", Port: 80, Path: "/ws"},
		staticNetwork{ready: true}, testLogger{})

	if err := s.SendText([]byte("x")); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("SendText() = %v, want ErrNotConnected", err)
	}
	if err := s.SendBinary([]byte{1}); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("SendBinary() = %v, want ErrNotConnected", err)
	}
}

func TestSession_ServerCloseQueuesClosedEvent(t *testing.T) {
	srv, _, cfg := newTestServer(t)
	srv.onConnect = func(conn *websocket.Conn) {
		conn.Close()
	}
	s := NewSession(cfg, staticNetwork{ready: true}, testLogger{})
	defer s.Close()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	pollUntil(t, s, func(ev ports.Event) bool { return ev.Kind == ports.EventClosed })
}

func TestSession_ReconnectDiscardsStaleEvents(t *testing.T) {
	srv, _, cfg := newTestServer(t)
	srv.onConnect = func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("stale"))
		conn.Close()
	}
	s := NewSession(cfg, staticNetwork{ready: true}, testLogger{})
	defer s.Close()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("first Connect() error = %v", err)
	}
	// Let the first connection's events land in the queue, unpolled.
	time.Sleep(50 * time.Millisecond)

	srv.onConnect = nil
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}

	seen := pollUntil(t, s, func(ev ports.Event) bool { return ev.Kind == ports.EventOpened })
	for _, ev := range seen {
		if ev.Kind == ports.EventText || ev.Kind == ports.EventClosed {
			t.Errorf("stale event %v (%q) survived reconnect", ev.Kind, ev.Text)
		}
	}
}

func TestSession_PingIsSurfacedAndAnswered(t *testing.T) {
	srv, _, cfg := newTestServer(t)
	pongs := make(chan string, 1)
	srv.onConnect = func(conn *websocket.Conn) {
		conn.SetPongHandler(func(appData string) error {
			select {
			case pongs <- appData:
			default:
			}
			return nil
		})
		conn.WriteControl(websocket.PingMessage, []byte("keepalive"),
			time.Now().Add(time.Second))
	}
	s := NewSession(cfg, staticNetwork{ready: true}, testLogger{})
	defer s.Close()

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	seen := pollUntil(t, s, func(ev ports.Event) bool { return ev.Kind == ports.EventPing })
	last := seen[len(seen)-1]
	if last.Text != "keepalive" {
		t.Errorf("ping payload = %q, want keepalive", last.Text)
	}

	select {
	case data := <-pongs:
		if data != "keepalive" {
			t.Errorf("pong payload = %q, want keepalive", data)
		}
	case <-time.After(2 * time.Second):
		t.Error("server never received the pong")
	}
}

func TestSession_CloseWhenDisconnected(t *testing.T) {
	s := NewSession(Config{Host: "cctv.local", Port: 80, Path: "/ws"},
		staticNetwork{ready: true}, testLogger{})

	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v on a disconnected session, want nil", err)
	}
}
