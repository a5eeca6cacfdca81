// SPDX-License-Identifier: EPL-2.0

// Package wav decodes WAV files into audio.Source streams.
//
// Decoding is handled by github.com/go-audio/wav. Integer PCM at 8, 16, 24
// and 32 bits is accepted, with any channel count and sample rate:
//
//	file, _ := os.Open("voice.wav")
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // ErrNotWavFile, ErrUnsupportedEncoding, ErrUnsupportedWavLayout
//	}
//	defer src.Close() // closes file
//
// 8-bit WAV data is unsigned and is re-centred around zero.
package wav
