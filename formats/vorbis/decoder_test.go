// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/wfspbx/audio"
)

// mockOggVorbisReader returns interleaved values the way oggvorbis does:
// the count is in values, not frames.
type mockOggVorbisReader struct {
	sampleRate int
	channels   int
	values     []float32
	offset     int
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.offset >= len(m.values) {
		return 0, io.EOF
	}
	n := copy(buf, m.values[m.offset:])
	m.offset += n

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("OggS but not really"))); err == nil {
		t.Error("Decode() expected error for invalid input")
	}
}

func TestSource_ValueCount(t *testing.T) {
	t.Parallel()

	values := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	dec := &mockOggVorbisReader{sampleRate: 44100, channels: 2, values: values}
	s := &source{dec: dec, sampleRate: 44100, channels: 2}

	dst := make([]float32, 4)
	n, err := s.ReadSamples(dst)
	if err != nil || n != 4 {
		t.Fatalf("first read = (%d, %v), want (4, nil)", n, err)
	}

	n, err = s.ReadSamples(dst)
	if err != nil || n != 2 {
		t.Fatalf("second read = (%d, %v), want (2, nil)", n, err)
	}
	if dst[0] != 0.3 || dst[1] != -0.3 {
		t.Errorf("second read values = %v", dst[:2])
	}

	if _, err := s.ReadSamples(dst); !errors.Is(err, io.EOF) {
		t.Errorf("third read error = %v, want io.EOF", err)
	}
}

func TestSource_OddBuffer(t *testing.T) {
	t.Parallel()

	dec := &mockOggVorbisReader{sampleRate: 44100, channels: 2, values: []float32{1, 2, 3, 4}}
	s := &source{dec: dec, sampleRate: 44100, channels: 2}

	// 3 values only fit one stereo frame.
	n, _ := s.ReadSamples(make([]float32, 3))
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}

	if _, err := s.ReadSamples(make([]float32, 1)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("error = %v, want ErrInvalidDstSize", err)
	}
}
