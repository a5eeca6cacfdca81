// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3, which always yields
// interleaved 16-bit stereo. Mono files come back with both channels equal,
// so the clip loader's downmix leaves them unchanged.
//
//	file, _ := os.Open("track.mp3")
//	src, err := mp3.Decoder{}.Decode(file)
package mp3
