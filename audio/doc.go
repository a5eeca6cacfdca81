// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample pipeline that feeds the mixer.
//
// A decoded file is a Source: a pull-based stream of interleaved float32
// samples in [-1.0, 1.0]. Sources chain into processing stages:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	mono := audio.NewDownmix(audio.NewResampler(src, 44100))
//
// LoadClip runs that chain to completion and keeps the result in memory as a
// Clip, so the real-time render path never touches a decoder or the disk:
//
//	clip, err := audio.LoadClip(src, 44100)
//	cur := audio.NewCursor(clip)
//	cur.SetLooping(true)
//	cur.ReadInto(block)
//
// A Cursor is the per-source playback position over a Clip. Several cursors
// may share one clip.
//
// # Registry
//
// Decoders are registered by format key, usually the file extension:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, ok := registry.Get("wav")
//
// # Device output
//
// Interleaver turns any BlockRenderer (the mixer, the renderer graph) into an
// io.Reader of interleaved float32 little-endian frames for an audio device.
//
// # Errors
//
// ReadSamples returns io.EOF when no more data is available, possibly
// together with the final samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
