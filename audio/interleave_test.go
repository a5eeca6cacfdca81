// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

// countingRenderer writes the channel index plus the block number into
// every sample.
type countingRenderer struct {
	blocks int
}

func (c *countingRenderer) Render(out [][]float32) {
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = float32(ch) + float32(c.blocks)*10
		}
	}
	c.blocks++
}

func TestInterleaver_Layout(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	il := NewInterleaver(r, 2, 4)

	buf := make([]byte, 2*4*4*2)
	if _, err := io.ReadFull(il, buf); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}

	for f := 0; f < 8; f++ {
		for ch := 0; ch < 2; ch++ {
			at := (f*2 + ch) * 4
			got := math.Float32frombits(binary.LittleEndian.Uint32(buf[at:]))
			want := float32(ch) + float32(f/4)*10
			if got != want {
				t.Fatalf("frame %d ch %d = %f, want %f", f, ch, got, want)
			}
		}
	}
	if r.blocks != 2 {
		t.Errorf("rendered %d blocks, want 2", r.blocks)
	}
}

func TestInterleaver_PartialReads(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	il := NewInterleaver(r, 1, 8)

	small := make([]byte, 3)
	total := 0
	for total < 8*4 {
		n, err := il.Read(small)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		total += n
	}
	if r.blocks != 1 {
		t.Errorf("rendered %d blocks for one block of bytes, want 1", r.blocks)
	}
}
