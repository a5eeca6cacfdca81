// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	area := Size{W: 200, H: 100}

	tests := []struct {
		name   string
		screen Point
		want   Point
	}{
		{"top left", Point{0, 0}, Point{0, 1}},
		{"bottom right", Point{200, 100}, Point{1, 0}},
		{"centre", Point{100, 50}, Point{0.5, 0.5}},
		{"outside clamps", Point{-50, 400}, Point{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.screen, area)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}

	assert.Equal(t, Point{}, Normalize(Point{X: 3, Y: 4}, Size{}))
}

func TestFlipY_Involution(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))

	for range 1000 {
		p := Point{X: rng.Float64(), Y: rng.Float64()}
		q := FlipY(FlipY(p))
		assert.InDelta(t, p.X, q.X, 1e-12)
		assert.InDelta(t, p.Y, q.Y, 1e-12)
	}
}

func TestClampProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for range 1000 {
		screen := Point{X: rng.Float64()*400 - 100, Y: rng.Float64()*400 - 100}
		p := Normalize(screen, Size{W: 200, H: 200})
		assert.True(t, p.X >= 0 && p.X <= 1, "x %v", p.X)
		assert.True(t, p.Y >= 0 && p.Y <= 1, "y %v", p.Y)
	}
}

func TestToScreen_RoundTrip(t *testing.T) {
	area := Size{W: 640, H: 480}
	p := Point{X: 0.25, Y: 0.8}

	back := Normalize(ToScreen(p, area), area)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}
