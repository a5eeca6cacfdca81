// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// IntReader is the part of the go-audio decoders IntSource reads from.
type IntReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// IntSource adapts a go-audio integer PCM decoder to the float32 source
// contract used by the audio package.
type IntSource struct {
	dec        IntReader
	format     *goaudio.Format
	scale      float32
	offset     int
	intBuf     *goaudio.IntBuffer
	sampleRate int
	channels   int
	closer     io.Closer
}

// NewIntSource reads from dec. Unsigned marks 8-bit data stored as 0..255,
// as WAV does.
func NewIntSource(dec IntReader, format *goaudio.Format, bitDepth int, unsigned bool) *IntSource {
	s := &IntSource{
		dec:        dec,
		format:     format,
		scale:      IntScale(bitDepth),
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
	}
	if unsigned && bitDepth == 8 {
		s.offset = 128
	}

	return s
}

// WithCloser makes Close release c.
func (s *IntSource) WithCloser(c io.Closer) *IntSource {
	s.closer = c
	return s
}

func (s *IntSource) SampleRate() int { return s.sampleRate }
func (s *IntSource) Channels() int   { return s.channels }

func (s *IntSource) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *IntSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.format,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("pcm buffer: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v-s.offset) * s.scale
	}

	if n < len(dst) || err != nil {
		return n, io.EOF
	}

	return n, nil
}
