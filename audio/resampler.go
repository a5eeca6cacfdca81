// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/wfspbx/internal/pcm"
)

// maxEmptyReads bounds how many (0, nil) reads are tolerated from a source
// before it is treated as exhausted.
const maxEmptyReads = 64

// Resampler streams from src to a target sample rate using cubic
// interpolation. It works on interleaved samples and keeps the channel count.
// A one-pole low-pass is applied to the input when downsampling.
type Resampler struct {
	src      Source
	rate     int
	step     float64 // source frames consumed per output frame
	channels int

	// hist[1] and hist[2] bracket the output position; hist[0] and hist[3]
	// are the outer spline points. real marks frames that came from src
	// rather than edge padding.
	hist [4][]float32
	real [4]bool
	frac float64

	primed bool
	eof    bool
	empty  int

	in           []float32
	inPos, inLen int

	lowpass []float32
	lpReady bool
	alpha   float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	r := &Resampler{
		src:      src,
		rate:     dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		in:       make([]float32, 1024*channels),
	}
	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}
	if r.step > 1 {
		r.lowpass = make([]float32, channels)
		r.alpha = 0.5
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// nextFrame copies the next source frame into dst. It reports false once
// the source is exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for r.inPos >= r.inLen {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels

		switch {
		case errors.Is(err, io.EOF):
			r.eof = true
		case err != nil:
			return false, fmt.Errorf("resampler: %w", err)
		case n == 0:
			r.empty++
			if r.empty > maxEmptyReads {
				r.eof = true
			}
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	switch {
	case r.lowpass == nil:
	case !r.lpReady:
		copy(r.lowpass, dst)
		r.lpReady = true
	default:
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.lowpass[c]
			r.lowpass[c] = dst[c]
		}
	}

	return true, nil
}

// load fills hist[slot] from the source, padding with the previous slot at
// the end of the stream.
func (r *Resampler) load(slot int) error {
	ok, err := r.nextFrame(r.hist[slot])
	if err != nil {
		return err
	}
	r.real[slot] = ok
	if !ok && slot > 0 {
		copy(r.hist[slot], r.hist[slot-1])
	}

	return nil
}

func (r *Resampler) prime() error {
	if err := r.load(1); err != nil {
		return err
	}
	if !r.real[1] {
		return io.EOF
	}
	copy(r.hist[0], r.hist[1])
	r.real[0] = true

	if err := r.load(2); err != nil {
		return err
	}
	if err := r.load(3); err != nil {
		return err
	}
	r.primed = true

	return nil
}

func (r *Resampler) advance() error {
	r.hist[0], r.hist[1], r.hist[2], r.hist[3] = r.hist[1], r.hist[2], r.hist[3], r.hist[0]
	r.real[0], r.real[1], r.real[2] = r.real[1], r.real[2], r.real[3]

	return r.load(3)
}

// ReadSamples produces samples at the target rate. len(dst) must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.frac >= 1 {
			r.frac--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.real[1] {
			break
		}

		x := float32(r.frac)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = pcm.CubicInterpolate(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}
		written++
		r.frac += r.step
	}

	if written == 0 {
		return 0, io.EOF
	}

	return written * r.channels, nil
}
