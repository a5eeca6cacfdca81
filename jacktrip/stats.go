// SPDX-License-Identifier: EPL-2.0

package jacktrip

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/viterin/vek/vek32"
)

// Stats is a snapshot of link counters. Peak and RMS describe received
// audio since the previous snapshot.
type Stats struct {
	Received  uint64
	Sent      uint64
	Underruns uint64
	Overruns  uint64
	Dropped   uint64
	Peak      float32
	RMS       float32
}

type stats struct {
	received  atomic.Uint64
	sent      atomic.Uint64
	underruns atomic.Uint64
	overruns  atomic.Uint64
	dropped   atomic.Uint64

	mtx     sync.Mutex
	scratch []float32
	peak    float32
	power   float64
	blocks  int
}

func (s *stats) measure(block [][]float32) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, ch := range block {
		if cap(s.scratch) < len(ch) {
			s.scratch = make([]float32, len(ch))
		}
		tmp := s.scratch[:len(ch)]

		vek32.Mul_Into(tmp, ch, ch)
		s.power += float64(vek32.Mean(tmp))
		s.blocks++

		copy(tmp, ch)
		vek32.Abs_Inplace(tmp)
		s.peak = max(s.peak, vek32.Max(tmp))
	}
}

// Stats returns the counters and resets the level meter.
func (c *Client) Stats() Stats {
	st := Stats{
		Received:  c.stats.received.Load(),
		Sent:      c.stats.sent.Load(),
		Underruns: c.stats.underruns.Load(),
		Overruns:  c.stats.overruns.Load(),
		Dropped:   c.stats.dropped.Load(),
	}

	c.stats.mtx.Lock()
	st.Peak = c.stats.peak
	if c.stats.blocks > 0 {
		st.RMS = float32(math.Sqrt(c.stats.power / float64(c.stats.blocks)))
	}
	c.stats.peak, c.stats.power, c.stats.blocks = 0, 0, 0
	c.stats.mtx.Unlock()

	return st
}
