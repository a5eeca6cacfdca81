// SPDX-License-Identifier: EPL-2.0

// Package node runs the renderer side: one network audio link, the control
// receiver and the audio graph that joins the link to the renderer.
package node

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ik5/wfspbx/internal/audiograph"
	"github.com/ik5/wfspbx/jacktrip"
	"github.com/sirupsen/logrus"
)

// Link is the network audio link to the hub server.
type Link interface {
	Connect(ctx context.Context, timeout time.Duration) error
	Connected() bool
	Stats() jacktrip.Stats
}

// Poller handles at most one pending control datagram per call.
type Poller interface {
	Poll() (bool, error)
}

type Options struct {
	ConnectTimeout time.Duration
	StatsInterval  time.Duration
}

type Node struct {
	link      Link
	control   Poller
	opts      Options
	graph     *audiograph.Graph
	closers   []io.Closer
	lastStats time.Time
}

func New(link Link, control Poller, opts Options) *Node {
	return &Node{link: link, control: control, opts: opts}
}

// Graph returns the audio graph built by Boot, or nil.
func (n *Node) Graph() *audiograph.Graph { return n.graph }

// Step runs one loop iteration. While the link is down it tries one
// reconnect, bounded by the connect timeout, and handles no control
// traffic. A failed attempt waits out the rest of the timeout so retries
// keep a fixed pace.
func (n *Node) Step(ctx context.Context) error {
	if !n.link.Connected() {
		started := time.Now()
		if err := n.link.Connect(ctx, n.opts.ConnectTimeout); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Node.Step",
				"error":    err.Error(),
			}).Warn("Link connect failed")

			wait := time.NewTimer(n.opts.ConnectTimeout - time.Since(started))
			defer wait.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-wait.C:
			}
			return nil
		}

		n.lastStats = time.Now()
		// reset the level meter
		n.link.Stats()
		return nil
	}

	if _, err := n.control.Poll(); err != nil {
		return err
	}

	if n.opts.StatsInterval > 0 && time.Since(n.lastStats) >= n.opts.StatsInterval {
		n.lastStats = time.Now()
		st := n.link.Stats()
		logrus.WithFields(logrus.Fields{
			"function":  "Node.Step",
			"received":  st.Received,
			"sent":      st.Sent,
			"underruns": st.Underruns,
			"overruns":  st.Overruns,
			"dropped":   st.Dropped,
			"peak":      st.Peak,
			"rms":       st.RMS,
		}).Info("Audio stats")
	}

	return nil
}

// Run steps until ctx is done or the control socket fails.
func (n *Node) Run(ctx context.Context) error {
	for {
		if err := n.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (n *Node) Close() error {
	var errs []error
	for i := len(n.closers) - 1; i >= 0; i-- {
		if err := n.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	n.closers = nil

	return errors.Join(errs...)
}
