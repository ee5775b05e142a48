// Package netif implements the network port by inspecting the host's
// interfaces. It is the Linux-device analog of a WiFi association wait:
// the OS manages the link, the agent just polls until an address shows up.
package netif

import (
	"context"
	"net"
	"time"

	"github.com/camlabs/camship/internal/ports"
)

// Poll cadence and progress-report spacing for the association wait.
const (
	pollDelay      = 500 * time.Millisecond
	reportInterval = 5 * time.Second
)

// Monitor reports network readiness from live interface state.
type Monitor struct {
	logger ports.Logger
}

// NewMonitor creates a monitor.
func NewMonitor(logger ports.Logger) *Monitor {
	return &Monitor{logger: logger}
}

// Ready reports whether some interface has a routable address.
func (m *Monitor) Ready() bool {
	return m.LocalIP() != ""
}

// LocalIP returns the first global unicast IPv4 address on an interface
// that is up and not loopback, or "" when there is none.
func (m *Monitor) LocalIP() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip != nil && ip.IsGlobalUnicast() {
				return ip.String()
			}
		}
	}
	return ""
}

// WaitReady polls until an address appears or ctx is done. Association
// is retried indefinitely: there is no supervising process to restart
// the agent, so giving up is not an option.
func (m *Monitor) WaitReady(ctx context.Context) error {
	lastReport := time.Now()
	for {
		if m.Ready() {
			return nil
		}
		if time.Since(lastReport) >= reportInterval {
			m.logger.Info("waiting for network association")
			lastReport = time.Now()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollDelay):
		}
	}
}

// Static is a fixed-state network, used by tests and diagnostics.
type Static struct {
	IsReady bool
	IP      string
}

// WaitReady returns immediately when ready, otherwise blocks until ctx
// is done.
func (s *Static) WaitReady(ctx context.Context) error {
	if s.IsReady {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

// Ready reports the fixed state.
func (s *Static) Ready() bool { return s.IsReady }

// LocalIP returns the fixed address.
func (s *Static) LocalIP() string { return s.IP }
