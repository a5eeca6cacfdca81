// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"
)

// BlockRenderer fills one non-interleaved block of audio. len(out) is the
// channel count and every channel has the same length.
type BlockRenderer interface {
	Render(out [][]float32)
}

// Interleaver pulls blocks from a BlockRenderer and exposes them as an
// io.Reader of interleaved float32 little-endian frames, the layout audio
// devices consume.
type Interleaver struct {
	r        BlockRenderer
	channels int
	block    [][]float32
	pending  []byte
	off      int
}

func NewInterleaver(r BlockRenderer, channels, blockSize int) *Interleaver {
	block := make([][]float32, channels)
	for i := range block {
		block[i] = make([]float32, blockSize)
	}

	return &Interleaver{
		r:        r,
		channels: channels,
		block:    block,
		pending:  make([]byte, channels*blockSize*4),
		off:      channels * blockSize * 4,
	}
}

// Read never returns an error; the renderer is expected to emit silence
// when it has nothing to play.
func (i *Interleaver) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if i.off >= len(i.pending) {
			i.fill()
		}
		c := copy(p[n:], i.pending[i.off:])
		n += c
		i.off += c
	}

	return n, nil
}

func (i *Interleaver) fill() {
	i.r.Render(i.block)

	frames := len(i.block[0])
	for f := range frames {
		for ch := range i.channels {
			at := (f*i.channels + ch) * 4
			binary.LittleEndian.PutUint32(i.pending[at:], math.Float32bits(i.block[ch][f]))
		}
	}
	i.off = 0
}
