// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds generators and block helpers shared by the audio
// tests. It does not import the audio packages so any of them may use it.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the sample for a frame and channel.
type Waveform func(frame, channel int) float32

func Constant(v float32) Waveform {
	return func(int, int) float32 { return v }
}

func Sine(sampleRate int, frequency float64) Waveform {
	return func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	}
}

// Ramp rises linearly from 0 towards 1 over frames.
func Ramp(frames int) Waveform {
	return func(frame, _ int) float32 {
		return float32(frame) / float32(frames)
	}
}

// PerChannel gives every channel its own constant value.
func PerChannel(values ...float32) Waveform {
	return func(_ int, channel int) float32 { return values[channel] }
}

// Source is an audio.Source that synthesizes a fixed number of frames.
type Source struct {
	sampleRate int
	channels   int
	frames     int
	generated  int
	wave       Waveform
	failAt     int
	failErr    error
	closed     bool
}

func NewSource(sampleRate, channels, frames int, wave Waveform) *Source {
	return &Source{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		wave:       wave,
		failAt:     -1,
	}
}

// FailAfter makes ReadSamples return err once frame has been produced.
func (s *Source) FailAfter(frame int, err error) *Source {
	s.failAt, s.failErr = frame, err
	return s
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Closed() bool    { return s.closed }
func (s *Source) Close() error {
	s.closed = true
	return nil
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.failAt >= 0 && s.generated >= s.failAt {
		return 0, s.failErr
	}
	if s.generated >= s.frames {
		return 0, io.EOF
	}

	frames := min(len(dst)/s.channels, s.frames-s.generated)
	if s.failAt >= 0 {
		frames = min(frames, s.failAt-s.generated)
	}
	for f := range frames {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.generated+f, ch)
		}
	}
	s.generated += frames

	if s.generated >= s.frames {
		return frames * s.channels, io.EOF
	}

	return frames * s.channels, nil
}

// Block allocates a non-interleaved buffer of channels x size.
func Block(channels, size int) [][]float32 {
	out := make([][]float32, channels)
	for i := range out {
		out[i] = make([]float32, size)
	}

	return out
}

// Fill sets every sample of block to v.
func Fill(block [][]float32, v float32) {
	for _, ch := range block {
		for i := range ch {
			ch[i] = v
		}
	}
}

// Silent reports whether every sample of block is zero.
func Silent(block [][]float32) bool {
	for _, ch := range block {
		for _, s := range ch {
			if s != 0 {
				return false
			}
		}
	}

	return true
}

// Peak returns the largest absolute sample value in samples.
func Peak(samples []float32) float32 {
	var p float32
	for _, s := range samples {
		p = max(p, float32(math.Abs(float64(s))))
	}

	return p
}
