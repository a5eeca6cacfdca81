// SPDX-License-Identifier: EPL-2.0

package patchbay

import (
	"testing"

	"github.com/ik5/wfspbx/internal/audiograph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutopatch(t *testing.T) {
	g := audiograph.New(4)
	nop := audiograph.ProcessorFunc(func(_, _ [][]float32) {})
	link := g.Add(nop, 2, 2)
	renderer := g.Add(nop, 2, 2)

	require.NoError(t, Autopatch(g, link, renderer, 2))
	require.NoError(t, Autopatch(g, link, renderer, 2))

	assert.Equal(t, []audiograph.Cord{
		{From: link, Out: 0, To: renderer, In: 0},
		{From: link, Out: 0, To: link, In: 0},
		{From: link, Out: 1, To: renderer, In: 1},
		{From: link, Out: 1, To: link, In: 1},
	}, g.Cords())

	assert.ErrorIs(t, Autopatch(g, link, renderer, 3), audiograph.ErrBadPort)
}
