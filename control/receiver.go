// SPDX-License-Identifier: EPL-2.0

package control

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

const (
	// DefaultPollTimeout bounds how long one Poll waits for a datagram.
	DefaultPollTimeout = time.Millisecond
	// MaxDatagram is the largest UDP payload over IPv4.
	MaxDatagram = 65507
)

// Receiver reads control datagrams and hands them to a Dispatcher.
type Receiver struct {
	conn    net.PacketConn
	disp    *Dispatcher
	buf     []byte
	timeout time.Duration
}

func NewReceiver(conn net.PacketConn, d *Dispatcher) *Receiver {
	return &Receiver{
		conn:    conn,
		disp:    d,
		buf:     make([]byte, MaxDatagram),
		timeout: DefaultPollTimeout,
	}
}

// SetPollTimeout changes the per-Poll wait.
func (r *Receiver) SetPollTimeout(d time.Duration) { r.timeout = d }

// Poll handles at most one datagram. It reports whether a datagram was read;
// a read timeout is not an error.
func (r *Receiver) Poll() (bool, error) {
	_ = r.conn.SetReadDeadline(time.Now().Add(r.timeout))

	n, _, err := r.conn.ReadFrom(r.buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return false, nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return false, nil
		}
		return false, fmt.Errorf("control receive: %w", err)
	}

	r.disp.HandleDatagram(r.buf[:n])

	return true, nil
}

func (r *Receiver) Close() error {
	if err := r.conn.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
