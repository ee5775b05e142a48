package ports

import "context"

// Network reports whether the device has usable network association.
// On embedded hardware this is the WiFi stack; on a Linux SBC it is the
// OS-managed link. The agent never gives up on association: WaitReady
// polls with a bounded delay and periodic progress reporting until the
// context is canceled.
type Network interface {
	// WaitReady blocks until the network is associated or ctx is done.
	WaitReady(ctx context.Context) error

	// Ready reports current association without blocking.
	Ready() bool

	// LocalIP returns the device's address, or "" when not associated.
	LocalIP() string
}
