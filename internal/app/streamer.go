package app

import (
	"context"
	"fmt"
	"time"

	"github.com/camlabs/camship/internal/domain"
	"github.com/camlabs/camship/internal/ports"
	"github.com/camlabs/camship/internal/protocol"
)

// StreamConfig contains configuration for the streaming loop.
type StreamConfig struct {
	DeviceID          string
	DeviceVersion     string
	AuthToken         string
	HeartbeatInterval time.Duration
	FrameInterval     time.Duration
	FPSWindow         time.Duration
}

// EventEmitter receives notifications from the streaming loop. Methods
// are called synchronously on the loop's goroutine.
type EventEmitter interface {
	OnSessionState(previous, current domain.SessionState)
	OnFrameSent(size int, fps float64)
	OnSendError(err error)
}

// Streamer is the per-device streaming loop. It owns all session state:
// the transport session, the frame source, the heartbeat clock, and the
// FPS window. One iteration runs per frame interval; nothing here is
// safe for concurrent use.
type Streamer struct {
	cfg       StreamConfig
	transport ports.Transport
	source    ports.FrameSource
	network   ports.Network
	super     *Supervisor
	logger    ports.Logger
	emitter   EventEmitter

	state         domain.SessionState
	fps           *FPSCounter
	lastHeartbeat time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewStreamer creates a streaming loop with the given dependencies.
func NewStreamer(
	cfg StreamConfig,
	transport ports.Transport,
	source ports.FrameSource,
	network ports.Network,
	super *Supervisor,
	logger ports.Logger,
	emitter EventEmitter,
) *Streamer {
	window := cfg.FPSWindow
	if window <= 0 {
		window = time.Second
	}
	return &Streamer{
		cfg:       cfg,
		transport: transport,
		source:    source,
		network:   network,
		super:     super,
		logger:    logger,
		emitter:   emitter,
		state:     domain.StateDisconnected,
		fps:       NewFPSCounter(window),
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Run executes the streaming loop until the context is canceled.
// It first waits for network association, which is retried indefinitely;
// an embedded device has no supervising process to restart it.
func (s *Streamer) Run(ctx context.Context) error {
	if err := s.network.WaitReady(ctx); err != nil {
		return err
	}
	s.logger.Info("network associated", ports.String("ip", s.network.LocalIP()))

	for {
		select {
		case <-ctx.Done():
			s.transport.Close()
			return ctx.Err()
		default:
		}
		s.iterate(ctx)
	}
}

// iterate runs one loop cycle: poll, reconnect or heartbeat, capture,
// send, release, account, pace.
func (s *Streamer) iterate(ctx context.Context) {
	start := s.now()

	s.transport.Poll(s.handleEvent)

	if !s.state.Online() {
		s.setState(domain.StateConnecting)
		if err := s.super.Connect(ctx); err != nil {
			// Supervisor already waited out the backoff.
			s.setState(domain.StateDisconnected)
			return
		}
		// Deliver the open event this cycle so the hello goes out
		// before any frame.
		s.transport.Poll(s.handleEvent)
		return
	}

	if start.Sub(s.lastHeartbeat) >= s.cfg.HeartbeatInterval {
		if err := s.sendHeartbeat(start); err != nil {
			s.markDisconnected(err)
			return
		}
		s.lastHeartbeat = start
	}

	frame, err := s.source.Acquire()
	if err != nil {
		s.logger.Warn("frame capture failed", ports.Err(err))
		return
	}

	sendErr := s.sendFrame(frame)
	s.source.Release(frame)
	if sendErr != nil {
		s.markDisconnected(sendErr)
		return
	}

	if s.emitter != nil {
		s.emitter.OnFrameSent(frame.Size(), s.fps.FPS())
	}

	if fps, done := s.fps.Tick(s.now()); done {
		s.logger.Info("fps report", ports.Float64("fps", fps))
		s.shipLog(fmt.Sprintf("FPS: %.2f", fps))
	}

	elapsed := s.now().Sub(start)
	if remain := s.cfg.FrameInterval - elapsed; remain > 0 {
		s.sleep(ctx, remain)
	}
}

// handleEvent consumes one inbound transport event. Invoked only from
// Poll, on the loop's goroutine.
func (s *Streamer) handleEvent(ev ports.Event) {
	switch ev.Kind {
	case ports.EventOpened:
		s.setState(domain.StateConnected)
		if err := s.sendHello(); err != nil {
			s.markDisconnected(err)
		}
	case ports.EventClosed:
		s.logger.Warn("connection closed", ports.String("reason", ev.Text))
		s.setState(domain.StateDisconnected)
	case ports.EventPing:
		s.logger.Debug("ping received")
	case ports.EventPong:
		s.logger.Debug("pong received")
	case ports.EventText:
		if protocol.IsConnectionAck(ev.Text) {
			s.setState(domain.StateAuthenticated)
			if err := s.sendDeviceInfo(); err != nil {
				s.markDisconnected(err)
			}
			return
		}
		s.logger.Debug("server message", ports.String("payload", ev.Text))
	}
}

func (s *Streamer) sendHello() error {
	data, err := protocol.Encode(protocol.NewConnection(s.cfg.DeviceID, s.cfg.AuthToken))
	if err != nil {
		return err
	}
	return s.transport.SendText(data)
}

func (s *Streamer) sendDeviceInfo() error {
	data, err := protocol.Encode(protocol.DeviceInfo{
		Type:    protocol.TypeDeviceInfo,
		Device:  s.cfg.DeviceID,
		Version: s.cfg.DeviceVersion,
	})
	if err != nil {
		return err
	}
	return s.transport.SendText(data)
}

func (s *Streamer) sendHeartbeat(now time.Time) error {
	data, err := protocol.Encode(protocol.Heartbeat{
		Type:      protocol.TypeHeartbeat,
		Timestamp: now.UnixMilli(),
		Device:    s.cfg.DeviceID,
	})
	if err != nil {
		return err
	}
	return s.transport.SendText(data)
}

// sendFrame sends the metadata message, then the binary JPEG, in that
// order on the same session. The metadata must describe the payload
// that immediately follows it.
func (s *Streamer) sendFrame(frame domain.Frame) error {
	meta := protocol.Frame{
		Type:      protocol.TypeFrame,
		Size:      frame.Size(),
		Width:     frame.Width,
		Height:    frame.Height,
		Timestamp: frame.CapturedAt.UnixMilli(),
		FPS:       s.fps.FPS(),
		Device:    s.cfg.DeviceID,
	}
	data, err := protocol.Encode(meta)
	if err != nil {
		return err
	}
	if err := s.transport.SendText(data); err != nil {
		return err
	}
	return s.transport.SendBinary(frame.Data)
}

// shipLog mirrors a log line to the server, best effort. A failure here
// is not treated as a health signal; the next poll or send will notice.
func (s *Streamer) shipLog(message string) {
	if !s.state.Online() {
		return
	}
	data, err := protocol.Encode(protocol.Log{Type: protocol.TypeLog, Message: message})
	if err != nil {
		return
	}
	_ = s.transport.SendText(data)
}

// markDisconnected records a failed send as a connection-health signal:
// the session drops to Disconnected immediately and the transport is
// closed so the supervisor starts its backoff on the next iteration.
func (s *Streamer) markDisconnected(err error) {
	s.logger.Warn("send failed, dropping session", ports.Err(err))
	if s.emitter != nil {
		s.emitter.OnSendError(err)
	}
	s.setState(domain.StateDisconnected)
	s.transport.Close()
}

func (s *Streamer) setState(next domain.SessionState) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	s.logger.Info("session state",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
	)
	if s.emitter != nil {
		s.emitter.OnSessionState(prev, next)
	}
}

// State returns the current session state. Only meaningful from the
// loop's goroutine; external observers should use the event emitter.
func (s *Streamer) State() domain.SessionState {
	return s.state
}
