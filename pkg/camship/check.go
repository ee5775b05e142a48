package camship

import (
	"context"
	"fmt"
	"time"

	"github.com/camlabs/camship/internal/domain"
	"github.com/camlabs/camship/internal/ports"
	"github.com/camlabs/camship/internal/protocol"
)

// Check timeouts. Diagnostics should fail fast rather than retry.
const (
	checkNetworkTimeout = 10 * time.Second
	checkAckTimeout     = 5 * time.Second
	checkPollDelay      = 50 * time.Millisecond
)

// Check runs a one-shot diagnostic pass over the streaming components:
// network association, transport connect and authentication, and a
// single frame capture. It replaces streaming with assertions and
// returns the first failure. The agent must not be running.
func (c *Camship) Check(ctx context.Context) error {
	if !c.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	c.logger.Info("check: waiting for network association")
	netCtx, cancel := context.WithTimeout(ctx, checkNetworkTimeout)
	defer cancel()
	if err := c.network.WaitReady(netCtx); err != nil {
		return fmt.Errorf("check network: %w", err)
	}
	c.logger.Info("check: network associated", ports.String("ip", c.network.LocalIP()))

	if err := c.transport.Connect(ctx); err != nil {
		return fmt.Errorf("check connect: %w", err)
	}
	defer c.transport.Close()
	c.logger.Info("check: transport connected")

	if err := c.awaitAck(ctx); err != nil {
		return err
	}
	c.logger.Info("check: authenticated")

	frame, err := c.source.Acquire()
	if err != nil {
		return fmt.Errorf("check capture: %w", err)
	}
	c.source.Release(frame)
	c.logger.Info("check: frame captured",
		ports.Int("bytes", frame.Size()),
		ports.Int("width", frame.Width),
		ports.Int("height", frame.Height),
	)

	return nil
}

// awaitAck sends the hello once the open event arrives and waits for the
// server's acknowledgment.
func (c *Camship) awaitAck(ctx context.Context) error {
	deadline := time.Now().Add(checkAckTimeout)
	var opened, authed bool
	var sendErr error

	for time.Now().Before(deadline) && !authed && sendErr == nil {
		c.transport.Poll(func(ev ports.Event) {
			switch ev.Kind {
			case ports.EventOpened:
				opened = true
				data, err := protocol.Encode(protocol.NewConnection(c.config.DeviceID, c.config.AuthToken))
				if err != nil {
					sendErr = err
					return
				}
				sendErr = c.transport.SendText(data)
			case ports.EventText:
				if protocol.IsConnectionAck(ev.Text) {
					authed = true
				}
			case ports.EventClosed:
				sendErr = fmt.Errorf("connection closed: %s", ev.Text)
			}
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(checkPollDelay):
		}
	}

	if sendErr != nil {
		return fmt.Errorf("check handshake: %w", sendErr)
	}
	if !opened {
		return fmt.Errorf("check handshake: no open event before timeout")
	}
	if !authed {
		return fmt.Errorf("check handshake: no acknowledgment before timeout")
	}
	return nil
}
