// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/wfspbx/audio"
	"github.com/jfreymuth/oggvorbis"
)

type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	closer     io.Closer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadSamples decodes straight into dst. The decoder counts interleaved
// values, not frames, so its result is returned as is.
func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) < s.channels {
		return 0, audio.ErrInvalidDstSize
	}

	n, err := s.dec.Read(dst[:len(dst)-len(dst)%s.channels])
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("vorbis: %w", err)
	}

	return n, err
}

// Decoder decodes Ogg Vorbis streams.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	s := &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}

	return s, nil
}
