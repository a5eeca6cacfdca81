// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis
// files. The decoder already produces float32 samples in [-1.0, 1.0], so no
// conversion happens here.
//
// # Decoding Vorbis Files
//
//	file, _ := os.Open("rain.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	defer source.Close()
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The channel count and sample rate are taken from the stream header.
package vorbis
