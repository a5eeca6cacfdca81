// SPDX-License-Identifier: EPL-2.0

package control

import (
	"fmt"
	"io"
	"sync"

	"github.com/ik5/wfspbx/store"
	"github.com/sirupsen/logrus"
)

// Dialer opens the outbound control socket.
type Dialer func() (io.WriteCloser, error)

// Sender forwards every store change to the control group, one datagram per
// change. Changes made while it is not connected are dropped.
type Sender struct {
	mtx         sync.Mutex
	dial        Dialer
	conn        io.WriteCloser
	unsubscribe func()
}

// NewSender subscribes to st. Nothing is sent until Connect succeeds.
func NewSender(st *store.Store, dial Dialer) *Sender {
	s := &Sender{dial: dial}
	s.unsubscribe = st.Subscribe(func(c store.Change) {
		if err := s.Send(c); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Sender",
				"path":     c.Path,
				"error":    err.Error(),
			}).Warn("Control change not sent")
		}
	})

	return s
}

// Connect opens the socket if it is not open yet.
func (s *Sender) Connect() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.conn != nil {
		return nil
	}

	conn, err := s.dial()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Sender.Connect",
			"error":    err.Error(),
		}).Error("Failed to open control socket")
		return fmt.Errorf("control connect: %w", err)
	}
	s.conn = conn

	logrus.WithFields(logrus.Fields{
		"function": "Sender.Connect",
	}).Info("Control sender connected")

	return nil
}

func (s *Sender) Connected() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.conn != nil
}

// Send encodes and writes c.
func (s *Sender) Send(c store.Change) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("control send %s: %w", c.Path, err)
	}

	return nil
}

// Close revokes the store subscription and closes the socket.
func (s *Sender) Close() error {
	s.unsubscribe()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
