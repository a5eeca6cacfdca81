// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/wfspbx/audio"
	"github.com/viterin/vek/vek32"
)

// Render fills out, one slice per output channel, with the next block.
// Channels without a source are silent. Sources keyed beyond len(out) are
// not heard but still advance, so every source keeps time.
func (m *Mixer) Render(out [][]float32) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.sources) == 0 || m.stopped {
		for _, ch := range out {
			clear(ch)
		}
		m.stopped = true
		m.signalHalted()
		m.lastGain = m.gain
		return
	}

	for _, ch := range out {
		clear(ch)
	}
	frames := 0
	if len(out) > 0 {
		frames = len(out[0])
	}
	for _, key := range m.keys {
		if key < len(out) {
			m.sources[key].ReadInto(out[key])
		} else {
			m.skip(m.sources[key], frames)
		}
	}

	if !m.playing {
		for _, ch := range out {
			n := min(FadeLength, len(ch))
			m.ramp(ch[:n], 1, 0)
			clear(ch[n:])
		}
		m.post(justStopped)
	}

	if first := m.sources[m.keys[0]]; m.playing && !first.Looping() && first.Position() > first.Length()+1 {
		m.playing = false
		m.post(Ended)
	}

	m.stopped = !m.playing
	if m.stopped {
		m.signalHalted()
	}

	for _, ch := range out {
		m.ramp(ch, m.lastGain, m.gain)
	}
	m.lastGain = m.gain
}

// skip advances cur by frames samples through the scratch buffer.
func (m *Mixer) skip(cur *audio.Cursor, frames int) {
	for frames > 0 {
		n := min(frames, len(m.scratch))
		cur.ReadInto(m.scratch[:n])
		frames -= n
	}
}

// ramp multiplies ch by a linear ramp that starts at from and moves towards
// to by (to-from)/len(ch) per sample.
func (m *Mixer) ramp(ch []float32, from, to float32) {
	if len(ch) == 0 {
		return
	}
	if from == to {
		if from != 1 {
			vek32.MulNumber_Inplace(ch, from)
		}
		return
	}

	if cap(m.scratch) < len(ch) {
		m.scratch = make([]float32, len(ch))
	}
	r := m.scratch[:len(ch)]
	step := (to - from) / float32(len(ch))
	g := from
	for i := range r {
		r[i] = g
		g += step
	}
	vek32.Mul_Inplace(ch, r)
}
