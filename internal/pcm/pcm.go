// SPDX-License-Identifier: EPL-2.0

// Package pcm holds the sample conversions shared by the decoders, the
// resampler and the network audio link.
package pcm

// Float32ToInt16 clamps x to [-1,1] and scales it to a signed 16-bit sample.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from wrapping around
	return int16(x * 32767.0)
}

// Int16ToFloat32 maps a signed 16-bit sample into [-1,1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// IntScale returns the multiplier that normalises a signed integer sample of
// the given bit depth into [-1,1). Unknown depths are treated as 16-bit.
func IntScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 1.0 / 128.0
	case 24:
		return 1.0 / 8388608.0
	case 32:
		return 1.0 / 2147483648.0
	default:
		return 1.0 / 32768.0
	}
}

// CubicInterpolate evaluates a Catmull-Rom spline through y0..y3 at the
// fractional position x (0 <= x <= 1) between y1 and y2.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
