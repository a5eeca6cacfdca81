// SPDX-License-Identifier: EPL-2.0

package renderer

import (
	"testing"

	"github.com/ik5/wfspbx/internal/audiograph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Sums(t *testing.T) {
	m := NewMonitor()
	in := [][]float32{{1, 1}, {0.5, 0.5}, {0.25, 0.25}}
	out := [][]float32{make([]float32, 2), make([]float32, 2)}

	m.Process(in, out)

	assert.Equal(t, []float32{1.25, 1.25}, out[0])
	assert.Equal(t, []float32{0.5, 0.5}, out[1])

	m.Level = 0.5
	out = [][]float32{make([]float32, 2), make([]float32, 2)}
	m.Process(in, out)
	assert.Equal(t, []float32{0.625, 0.625}, out[0])
}

func TestMonitor_InGraph(t *testing.T) {
	g := audiograph.New(4)
	src := g.Add(audiograph.ProcessorFunc(func(_, out [][]float32) {
		for i := range out[0] {
			out[0][i] = 0.5
		}
	}), 0, 1)
	mon := g.Add(NewMonitor(), 1, 2)
	require.NoError(t, g.Connect(src, 0, mon, 0))
	require.NoError(t, g.SetSink(mon))

	out := [][]float32{make([]float32, 4), make([]float32, 4)}
	g.Render(out)
	// one block per cord
	g.Render(out)
	g.Render(out)

	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, out[0])
	assert.Equal(t, []float32{0, 0, 0, 0}, out[1])
}
