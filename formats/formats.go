// SPDX-License-Identifier: EPL-2.0

// Package formats ties the decoders together and loads source files into
// playable clips.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/wfspbx/audio"
	"github.com/ik5/wfspbx/formats/aiff"
	"github.com/ik5/wfspbx/formats/mp3"
	"github.com/ik5/wfspbx/formats/vorbis"
	"github.com/ik5/wfspbx/formats/wav"
	"github.com/sirupsen/logrus"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Registry returns a registry holding every decoder, keyed by lower case
// file extension without the dot.
func Registry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})

	return r
}

// Loader opens files through a registry.
type Loader struct {
	registry *audio.Registry
}

func NewLoader(r *audio.Registry) *Loader {
	return &Loader{registry: r}
}

// Extension returns the registry key for path.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Supports reports whether path has a registered extension.
func (l *Loader) Supports(path string) bool {
	_, ok := l.registry.Get(Extension(path))
	return ok
}

// Open decodes path completely into a mono clip at rate.
func (l *Loader) Open(path string, rate int) (*audio.Clip, error) {
	dec, ok := l.registry.Get(Extension(path))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	clip, err := audio.LoadClip(src, rate)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Loader.Open",
		"path":     path,
		"samples":  clip.Len(),
		"rate":     rate,
	}).Debug("Loaded audio file")

	return clip, nil
}

// Open loads path with the default registry.
func Open(path string, rate int) (*audio.Clip, error) {
	return NewLoader(Registry()).Open(path, rate)
}
