// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

func writeWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()

	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	enc := gowav.NewEncoder(out, rate, 16, channels, 1)
	if err := enc.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{SampleRate: rate, NumChannels: channels},
		Data:   data,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	want := []string{"aif", "aiff", "mp3", "ogg", "wav", "wave"}
	if got := Registry().Formats(); !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a/b/voice.WAV":  "wav",
		"rain.ogg":       "ogg",
		"no-extension":   "",
		"archive.tar.gz": "gz",
	}
	for in, want := range tests {
		if got := Extension(in); got != want {
			t.Errorf("Extension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpen_StereoWAV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stereo.wav")
	data := make([]int, 0, 2*441)
	for range 441 {
		data = append(data, 16384, 0)
	}
	writeWAV(t, path, 44100, 2, data)

	clip, err := Open(path, 44100)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if clip.Len() != 441 {
		t.Errorf("Len() = %d, want 441", clip.Len())
	}
	if clip.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", clip.SampleRate())
	}
}

func TestOpen_Resamples(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWAV(t, path, 22050, 1, make([]int, 2205))

	clip, err := Open(path, 44100)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if d := clip.Len() - 4410; d < -3 || d > 3 {
		t.Errorf("Len() = %d, want about 4410", clip.Len())
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := Open(filepath.Join(dir, "notes.txt"), 44100); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unknown extension: error = %v, want ErrUnsupportedFormat", err)
	}

	if _, err := Open(filepath.Join(dir, "missing.wav"), 44100); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: error = %v, want os.ErrNotExist", err)
	}

	bogus := filepath.Join(dir, "bogus.wav")
	if err := os.WriteFile(bogus, []byte("not audio"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(bogus, 44100); err == nil {
		t.Error("bogus file: expected a decode error")
	}
}

func TestLoader_Supports(t *testing.T) {
	t.Parallel()

	l := NewLoader(Registry())
	if !l.Supports("x.mp3") || l.Supports("x.flac") {
		t.Error("Supports() disagrees with the registry")
	}
}
