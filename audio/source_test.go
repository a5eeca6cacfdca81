// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ik5/wfspbx/internal/audiotest"
)

type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (Source, error) {
	return audiotest.NewSource(44100, 2, 100, audiotest.Constant(0)), nil
}

type failingDecoder struct{}

func (d *failingDecoder) Decode(r io.Reader) (Source, error) {
	return nil, errors.New("decode failed")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}

	registry.Register("wav", decoder)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}

	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}
}

func TestRegistry_GetNonExistent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	if _, ok := registry.Get("nonexistent"); ok {
		t.Error("Registry.Get() returned ok=true for non-existent format")
	}
}

func TestRegistry_Override(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := &mockDecoder{name: "first"}
	second := &failingDecoder{}

	registry.Register("wav", first)
	registry.Register("wav", second)

	got, _ := registry.Get("wav")
	if got != second {
		t.Error("Registry.Register() did not replace the previous decoder")
	}

	if _, err := got.Decode(nil); err == nil {
		t.Error("expected the replacing decoder to be used")
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	for _, f := range []string{"ogg", "wav", "mp3"} {
		registry.Register(f, &mockDecoder{name: f})
	}

	got := registry.Formats()
	want := []string{"mp3", "ogg", "wav"}
	if !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for range 100 {
			registry.Register("wav", &mockDecoder{})
		}
	}()

	for range 100 {
		registry.Get("wav")
		registry.Formats()
	}
	<-done
}
