// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/wfspbx/internal/audiotest"
)

func drain(t testing.TB, src Source, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for range 100000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("source never reached EOF")

	return nil
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(48000, 2, 1000, audiotest.Constant(0))
	r := NewResampler(src, 16000)

	if r.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", r.SampleRate())
	}
	if r.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", r.Channels())
	}
}

func TestResampler_SameRate(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(44100, 1, 100, audiotest.Constant(0.5))
	out := drain(t, NewResampler(src, 44100), 32)

	if len(out) != 100 {
		t.Fatalf("got %d samples, want 100", len(out))
	}
	for i, s := range out {
		if math.Abs(float64(s-0.5)) > 1e-5 {
			t.Fatalf("sample %d = %f, want 0.5", i, s)
		}
	}
}

func TestResampler_FrameCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		srcRate  int
		dstRate  int
		frames   int
		channels int
	}{
		{"downsample 2x", 48000, 24000, 4800, 1},
		{"upsample 2x", 22050, 44100, 2205, 1},
		{"48k to 44.1k", 48000, 44100, 4800, 2},
		{"extreme down", 96000, 8000, 9600, 1},
		{"extreme up", 8000, 96000, 800, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSource(tt.srcRate, tt.channels, tt.frames, audiotest.Constant(0.25))
			out := drain(t, NewResampler(src, tt.dstRate), 256*tt.channels)

			want := float64(tt.frames) * float64(tt.dstRate) / float64(tt.srcRate)
			got := float64(len(out) / tt.channels)
			if math.Abs(got-want) > 2+float64(tt.dstRate)/float64(tt.srcRate) {
				t.Errorf("got %v frames, want about %v", got, want)
			}
		})
	}
}

func TestResampler_StereoPreserved(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(48000, 2, 4800, audiotest.PerChannel(0.8, -0.4))
	out := drain(t, NewResampler(src, 44100), 512)

	for f := 0; f < len(out)/2; f++ {
		l, r := out[2*f], out[2*f+1]
		if math.Abs(float64(l-0.8)) > 1e-3 || math.Abs(float64(r+0.4)) > 1e-3 {
			t.Fatalf("frame %d = (%f, %f), want (0.8, -0.4)", f, l, r)
		}
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(44100, 2, 100, audiotest.Constant(0))
	r := NewResampler(src, 22050)

	if _, err := r.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(44100, 1, 0, audiotest.Constant(0))
	n, err := NewResampler(src, 22050).ReadSamples(make([]float32, 16))

	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestResampler_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := audiotest.NewSource(48000, 1, 1000, audiotest.Constant(0)).FailAfter(10, boom)
	r := NewResampler(src, 44100)

	buf := make([]float32, 64)
	var err error
	for range 10 {
		if _, err = r.ReadSamples(buf); err != nil {
			break
		}
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
}

func TestResampler_Close(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(44100, 1, 10, audiotest.Constant(0))
	if err := NewResampler(src, 8000).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.Closed() {
		t.Error("Close() did not close the source")
	}
}

func TestResampler_MinimalAllocs(t *testing.T) {
	src := audiotest.NewSource(48000, 2, 1<<30, audiotest.Constant(0.1))
	r := NewResampler(src, 44100)
	buf := make([]float32, 1024)
	r.ReadSamples(buf)

	allocs := testing.AllocsPerRun(100, func() {
		r.ReadSamples(buf)
	})
	if allocs > 0 {
		t.Errorf("ReadSamples() allocates %v times per call", allocs)
	}
}

func BenchmarkResampler_Downsample(b *testing.B) {
	src := audiotest.NewSource(48000, 2, 1<<30, audiotest.Sine(48000, 440))
	r := NewResampler(src, 16000)
	buf := make([]float32, 4096)

	b.ResetTimer()
	for b.Loop() {
		r.ReadSamples(buf)
	}
}
