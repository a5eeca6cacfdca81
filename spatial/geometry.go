// SPDX-License-Identifier: EPL-2.0

package spatial

// Point is a position. Normalised points lie in the unit square with Y
// pointing up; screen points are in pixels with Y pointing down.
type Point struct {
	X, Y float64
}

// Size is the extent of the screen area sources are placed in.
type Size struct {
	W, H float64
}

func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Clamp returns p with both components clamped to [0,1].
func (p Point) Clamp() Point {
	return Point{X: Clamp01(p.X), Y: Clamp01(p.Y)}
}

// FlipY mirrors the vertical axis of a normalised point. Applying it twice
// returns the original point.
func FlipY(p Point) Point {
	return Point{X: p.X, Y: 1 - p.Y}
}

// Normalize converts a screen point into the clamped, Y-up unit square. An
// empty area maps everything to the origin.
func Normalize(screen Point, area Size) Point {
	if area.W <= 0 || area.H <= 0 {
		return Point{}
	}

	return FlipY(Point{X: screen.X / area.W, Y: screen.Y / area.H}.Clamp())
}

// ToScreen is the inverse of Normalize for points inside the unit square.
func ToScreen(p Point, area Size) Point {
	f := FlipY(p.Clamp())
	return Point{X: f.X * area.W, Y: f.Y * area.H}
}
