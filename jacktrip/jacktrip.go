// SPDX-License-Identifier: EPL-2.0

// Package jacktrip is a minimal JackTrip hub client: a TCP port exchange
// followed by a UDP stream of 16-bit non-interleaved audio packets carrying
// the default JackTrip header.
package jacktrip

import (
	"errors"
	"time"
)

const (
	// DefaultServerPort is the hub server's TCP handshake port.
	DefaultServerPort = 4464
	// DefaultLocalPort is the UDP port the client receives audio on.
	DefaultLocalPort = 8888
	// DefaultIdleTimeout is how long the link stays connected without
	// receiving a packet.
	DefaultIdleTimeout = 5 * time.Second
	// ExitPacketSize is the length of the all-0xFF packet that ends a
	// session.
	ExitPacketSize = 63

	bitResolution = 16
)

var (
	ErrShortPacket     = errors.New("packet shorter than header")
	ErrPayloadSize     = errors.New("payload size does not match header")
	ErrUnknownRate     = errors.New("unsupported sample rate")
	ErrChannelMismatch = errors.New("packet channel count mismatch")
	ErrNotConnected    = errors.New("not connected")
	ErrHandshake       = errors.New("port handshake failed")
)
