// SPDX-License-Identifier: EPL-2.0

package audiograph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter emits the block number on every output.
type counter struct{ n float32 }

func (c *counter) Process(_, out [][]float32) {
	c.n++
	for _, ch := range out {
		for i := range ch {
			ch[i] = c.n
		}
	}
}

func passthrough() Processor {
	return ProcessorFunc(func(in, out [][]float32) {
		for i := range out {
			copy(out[i], in[i])
		}
	})
}

func TestConnect_Validation(t *testing.T) {
	g := New(4)
	a := g.Add(&counter{}, 0, 2)
	b := g.Add(passthrough(), 2, 2)

	require.NoError(t, g.Connect(a, 1, b, 0))
	require.NoError(t, g.Connect(a, 1, b, 0))
	assert.Len(t, g.Cords(), 1)

	assert.ErrorIs(t, g.Connect(a, 2, b, 0), ErrBadPort)
	assert.ErrorIs(t, g.Connect(a, 0, b, 5), ErrBadPort)
	assert.ErrorIs(t, g.Connect(a, 0, NodeID(9), 0), ErrUnknownNode)
	assert.ErrorIs(t, g.SetSink(NodeID(-1)), ErrUnknownNode)
}

func TestProcess_OneBlockLatencyPerCord(t *testing.T) {
	g := New(2)
	src := g.Add(&counter{}, 0, 1)
	mid := g.Add(passthrough(), 1, 1)
	require.NoError(t, g.Connect(src, 0, mid, 0))
	require.NoError(t, g.SetSink(mid))

	out := [][]float32{make([]float32, 2)}

	g.Render(out)
	assert.Equal(t, []float32{0, 0}, out[0])

	g.Render(out)
	assert.Equal(t, []float32{1, 1}, out[0])

	g.Render(out)
	assert.Equal(t, []float32{2, 2}, out[0])
}

func TestProcess_FanInSums(t *testing.T) {
	g := New(1)
	a := g.Add(&counter{}, 0, 1)
	b := g.Add(&counter{n: 10}, 0, 1)
	sum := g.Add(passthrough(), 1, 1)
	require.NoError(t, g.Connect(a, 0, sum, 0))
	require.NoError(t, g.Connect(b, 0, sum, 0))
	require.NoError(t, g.SetSink(sum))

	out := [][]float32{make([]float32, 1), make([]float32, 1)}
	out[1][0] = 5
	g.Render(out)
	g.Render(out)

	assert.Equal(t, float32(12), out[0][0])
	assert.Zero(t, out[1][0])
}

func TestProcess_FeedbackLoop(t *testing.T) {
	g := New(1)
	acc := g.Add(ProcessorFunc(func(in, out [][]float32) {
		out[0][0] = in[0][0] + 1
	}), 1, 1)
	require.NoError(t, g.Connect(acc, 0, acc, 0))
	require.NoError(t, g.SetSink(acc))

	out := [][]float32{make([]float32, 1)}
	for range 5 {
		g.Render(out)
	}

	assert.Equal(t, float32(5), out[0][0])
}

func TestRender_NoSink(t *testing.T) {
	g := New(2)
	g.Add(&counter{}, 0, 1)

	out := [][]float32{{3, 3}}
	g.Render(out)
	assert.Equal(t, []float32{0, 0}, out[0])
}
