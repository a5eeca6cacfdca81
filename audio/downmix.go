// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Downmix folds an interleaved Source into mono by averaging each frame.
// Mono input passes through untouched.
type Downmix struct {
	src Source
	buf []float32
}

func NewDownmix(src Source) *Downmix {
	return &Downmix{
		src: src,
		buf: make([]float32, 4096*src.Channels()),
	}
}

func (d *Downmix) SampleRate() int { return d.src.SampleRate() }
func (d *Downmix) Channels() int   { return 1 }
func (d *Downmix) Close() error {
	if err := d.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadSamples writes one averaged value per source frame into dst.
func (d *Downmix) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	channels := d.src.Channels()
	if channels == 1 {
		return d.src.ReadSamples(dst)
	}

	need := len(dst) * channels
	if cap(d.buf) < need {
		d.buf = make([]float32, need)
	}

	n, err := d.src.ReadSamples(d.buf[:need])
	frames := n / channels
	scale := 1 / float32(channels)
	for f := range frames {
		var sum float32
		for _, s := range d.buf[f*channels : (f+1)*channels] {
			sum += s
		}
		dst[f] = sum * scale
	}

	return frames, err
}
