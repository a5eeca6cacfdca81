// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Clip is a fully decoded mono buffer at a fixed sample rate. It is
// immutable once built and may back any number of cursors.
type Clip struct {
	samples    []float32
	sampleRate int
}

// NewClip wraps samples without copying.
func NewClip(samples []float32, sampleRate int) *Clip {
	return &Clip{samples: samples, sampleRate: sampleRate}
}

func (c *Clip) Len() int        { return len(c.samples) }
func (c *Clip) SampleRate() int { return c.sampleRate }

// LoadClip drains src into a mono clip at rate, resampling and downmixing as
// needed. src is closed when LoadClip returns.
func LoadClip(src Source, rate int) (*Clip, error) {
	defer src.Close()

	if rate <= 0 || src.SampleRate() <= 0 || src.Channels() <= 0 {
		return nil, ErrInvalidRate
	}

	var s Source = src
	if src.SampleRate() != rate {
		s = NewResampler(s, rate)
	}
	if s.Channels() != 1 {
		s = NewDownmix(s)
	}

	buf := make([]float32, 4096)
	samples := make([]float32, 0, rate)
	for {
		n, err := s.ReadSamples(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load clip: %w", err)
		}
	}

	if len(samples) == 0 {
		return nil, ErrEmptyClip
	}

	return NewClip(samples, rate), nil
}

// Cursor plays a Clip. All methods are safe for concurrent use, but ReadInto
// is expected to be driven from a single render goroutine.
type Cursor struct {
	mtx     sync.Mutex
	clip    *Clip
	pos     int64
	looping bool
}

func NewCursor(c *Clip) *Cursor {
	return &Cursor{clip: c}
}

// ReadInto fills dst with the next len(dst) samples. A looping cursor wraps
// to the start; otherwise samples past the end read as silence while the
// position keeps advancing.
func (c *Cursor) ReadInto(dst []float32) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	src := c.clip.samples
	total := int64(len(src))
	if total == 0 {
		clear(dst)
		return
	}

	for i := 0; i < len(dst); {
		if c.looping && c.pos >= total {
			c.pos %= total
		}
		if c.pos >= total {
			clear(dst[i:])
			c.pos += int64(len(dst) - i)
			return
		}
		n := copy(dst[i:], src[c.pos:])
		i += n
		c.pos += int64(n)
	}
}

// Position is the next sample to be read, which may exceed Length for a
// non-looping cursor that has run out.
func (c *Cursor) Position() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.pos
}

// SetPosition moves the cursor. Negative values clamp to zero.
func (c *Cursor) SetPosition(pos int64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.pos = max(pos, 0)
}

func (c *Cursor) Length() int64 { return int64(c.clip.Len()) }

func (c *Cursor) Looping() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.looping
}

func (c *Cursor) SetLooping(looping bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.looping = looping
}

// Finished reports whether a non-looping cursor has played past its end.
func (c *Cursor) Finished() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return !c.looping && c.pos >= int64(len(c.clip.samples))
}
