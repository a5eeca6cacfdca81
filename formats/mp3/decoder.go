// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/wfspbx/audio"
	"github.com/ik5/wfspbx/internal/pcm"
)

// go-mp3 always produces 16-bit little-endian stereo.
const channels = 2

type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// odd holds a trailing byte split across two reads.
	odd    byte
	hasOdd bool
	closer io.Closer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}

	start := 0
	if s.hasOdd {
		s.buf[0] = s.odd
		start = 1
		s.hasOdd = false
	}

	n, err := s.dec.Read(s.buf[start:bytesNeeded])
	n += start

	if n%2 == 1 {
		s.odd = s.buf[n-1]
		s.hasOdd = true
		n--
	}

	samples := n / 2
	for i := range samples {
		dst[i] = pcm.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("mp3: %w", err)
	}

	return samples, err
}

// Decoder decodes MPEG-1 Layer 3 streams.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	s := &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}

	return s, nil
}
