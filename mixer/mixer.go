// SPDX-License-Identifier: EPL-2.0

// Package mixer renders a dynamic set of clips into a multichannel block.
//
// A source is held under an integer key and is written, unscaled and
// unpanned, into the output channel with the same index. Render runs on the
// audio goroutine; every other method may be called concurrently from
// control goroutines.
package mixer

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ik5/wfspbx/audio"
	"github.com/ik5/wfspbx/internal/event"
	"github.com/sirupsen/logrus"
)

const (
	// FadeLength is how many samples the just-stopped block fades over.
	FadeLength = 256
	// MaxGain is the upper bound accepted by SetGain.
	MaxGain = 1.25

	DefaultStopTimeout = time.Second
	DefaultBlockSize   = 512
)

// Config sizes a Mixer. Zero values take defaults: no source limit, 1s stop
// bound, 512-sample blocks.
type Config struct {
	// Channels is the number of output channels keys may address.
	Channels    int
	MaxSources  int
	StopTimeout time.Duration
	BlockSize   int
}

type Mixer struct {
	cfg Config

	mtx      sync.Mutex
	sources  map[int]*audio.Cursor
	keys     []int // sorted view of sources
	playing  bool
	stopped  bool
	gain     float32
	lastGain float32
	halted   chan struct{}

	scratch []float32

	states  event.Bus[State]
	notify  chan State
	done    chan struct{}
	release sync.Once
}

// New returns a stopped mixer. Release must be called to stop its
// notification goroutine.
func New(cfg Config) *Mixer {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}

	m := &Mixer{
		cfg:      cfg,
		sources:  make(map[int]*audio.Cursor),
		stopped:  true,
		gain:     1,
		lastGain: 1,
		scratch:  make([]float32, max(cfg.BlockSize, FadeLength)),
		notify:   make(chan State, 16),
		done:     make(chan struct{}),
	}
	go m.deliver()

	return m
}

// deliver publishes transitions detected on the render goroutine, keeping
// subscribers and logging off the audio path.
func (m *Mixer) deliver() {
	for {
		select {
		case <-m.done:
			return
		case s := <-m.notify:
			if s == justStopped {
				logrus.WithFields(logrus.Fields{
					"function": "Mixer.Render",
				}).Debug("Just stopped playing, faded out last block")
				continue
			}
			if s == Ended {
				logrus.WithFields(logrus.Fields{
					"function": "Mixer.Render",
				}).Info("Playback reached the end")
			}
			m.states.Publish(s)
		}
	}
}

// post never blocks; a full queue drops the notice.
func (m *Mixer) post(s State) {
	select {
	case m.notify <- s:
	default:
	}
}

// Subscribe registers fn for Started, Stopped and Ended transitions.
func (m *Mixer) Subscribe(fn func(State)) (cancel func()) {
	return m.states.Subscribe(fn)
}

// CanAddSource reports whether another source fits under MaxSources.
func (m *Mixer) CanAddSource() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.canAdd()
}

func (m *Mixer) canAdd() bool {
	return m.cfg.MaxSources == 0 || len(m.sources) < m.cfg.MaxSources
}

// AddSource holds clip under key, looping. The clip must be playable; an
// empty clip is a caller bug and panics.
func (m *Mixer) AddSource(key int, clip *audio.Clip) error {
	if clip == nil || clip.Len() == 0 {
		panic(fmt.Errorf("mixer: add source %d: %w", key, ErrUnplayableClip))
	}

	fields := logrus.Fields{
		"function": "Mixer.AddSource",
		"key":      key,
	}

	if key < 0 || (m.cfg.Channels > 0 && key >= m.cfg.Channels) {
		logrus.WithFields(fields).Warn("Source key outside the output channels")
		return fmt.Errorf("%w: %d", ErrChannelOutOfRange, key)
	}

	cur := audio.NewCursor(clip)
	cur.SetLooping(true)

	m.mtx.Lock()
	if !m.canAdd() {
		m.mtx.Unlock()
		logrus.WithFields(fields).Warn("Mixer already full of sources")
		return ErrMixerFull
	}
	if _, ok := m.sources[key]; ok {
		m.mtx.Unlock()
		return fmt.Errorf("%w: %d", ErrSourceExists, key)
	}
	m.sources[key] = cur
	m.keys = append(m.keys, key)
	slices.Sort(m.keys)
	held := len(m.sources)
	m.mtx.Unlock()

	fields["held"] = held
	logrus.WithFields(fields).Debug("Source added")

	return nil
}

// RemoveSource drops the source under key. Removing the last source stops
// playback immediately.
func (m *Mixer) RemoveSource(key int) {
	m.mtx.Lock()
	_, ok := m.sources[key]
	if ok {
		delete(m.sources, key)
		m.keys = slices.DeleteFunc(m.keys, func(k int) bool { return k == key })
	}
	forcedStop := false
	if len(m.sources) == 0 {
		m.stopped = true
		forcedStop = m.playing
		m.playing = false
		m.signalHalted()
	}
	m.mtx.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Mixer.RemoveSource",
		"key":      key,
		"found":    ok,
	}).Debug("Source removed")

	if forcedStop {
		m.states.Publish(Stopped)
	}
}

// Start begins playback if there are sources and it is not already playing.
func (m *Mixer) Start() {
	m.mtx.Lock()
	if len(m.sources) == 0 || m.playing {
		m.mtx.Unlock()
		return
	}
	m.playing = true
	m.stopped = false
	m.mtx.Unlock()

	m.states.Publish(Started)
}

// Stop withdraws play intent and waits, up to the configured timeout, for
// the render goroutine to emit its faded block. It reports whether the mixer
// is fully stopped; after a true result the next block is silent.
func (m *Mixer) Stop() bool {
	m.mtx.Lock()
	if !m.playing {
		stopped := m.stopped
		m.mtx.Unlock()
		return stopped
	}
	m.playing = false
	if m.halted == nil && !m.stopped {
		m.halted = make(chan struct{})
	}
	halted := m.halted
	m.mtx.Unlock()

	ok := true
	if halted != nil {
		timer := time.NewTimer(m.cfg.StopTimeout)
		select {
		case <-halted:
		case <-timer.C:
			ok = false
			logrus.WithFields(logrus.Fields{
				"function": "Mixer.Stop",
				"timeout":  m.cfg.StopTimeout,
			}).Warn("Render did not confirm stop in time")
		}
		timer.Stop()
	}

	m.states.Publish(Stopped)

	return ok
}

// signalHalted wakes a waiting Stop. Callers hold mtx.
func (m *Mixer) signalHalted() {
	if m.halted != nil {
		close(m.halted)
		m.halted = nil
	}
}

// SetGain sets the target gain, clamped to [0, MaxGain]. The change is
// ramped across the next rendered block.
func (m *Mixer) SetGain(g float32) {
	g = min(max(g, 0), MaxGain)

	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.lastGain = m.gain
	m.gain = g
}

func (m *Mixer) Gain() float32 {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.gain
}

func (m *Mixer) Playing() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.playing
}

// Stopped reports whether the render goroutine has observed the end of
// playback.
func (m *Mixer) Stopped() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.stopped
}

func (m *Mixer) Len() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return len(m.sources)
}

// Keys lists the held keys in ascending order.
func (m *Mixer) Keys() []int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return slices.Clone(m.keys)
}

// SetLooping changes looping for one source.
func (m *Mixer) SetLooping(key int, looping bool) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	cur, ok := m.sources[key]
	if ok {
		cur.SetLooping(looping)
	}

	return ok
}

// Looping reports whether the lowest keyed source loops.
func (m *Mixer) Looping() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.keys) == 0 {
		return false
	}

	return m.sources[m.keys[0]].Looping()
}

// SetPosition seeks every source to pos.
func (m *Mixer) SetPosition(pos int64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for _, cur := range m.sources {
		cur.SetPosition(pos)
	}
}

// Position is the read position of the lowest keyed source.
func (m *Mixer) Position() int64 {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.keys) == 0 {
		return 0
	}

	return m.sources[m.keys[0]].Position()
}

// TotalLength is the length of the longest source in samples.
func (m *Mixer) TotalLength() int64 {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	var length int64
	for _, cur := range m.sources {
		length = max(length, cur.Length())
	}

	return length
}

// Release drops every source and stops the notification goroutine. The
// mixer renders silence afterwards.
func (m *Mixer) Release() {
	m.mtx.Lock()
	clear(m.sources)
	m.keys = m.keys[:0]
	m.playing = false
	m.stopped = true
	m.signalHalted()
	m.mtx.Unlock()

	m.release.Do(func() { close(m.done) })
}
