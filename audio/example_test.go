// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"

	"github.com/ik5/wfspbx/audio"
	"github.com/ik5/wfspbx/internal/audiotest"
)

func ExampleLoadClip() {
	// One second of 48kHz stereo.
	src := audiotest.NewSource(48000, 2, 48000, audiotest.Constant(0.25))

	clip, err := audio.LoadClip(src, 24000)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(clip.SampleRate(), clip.Len() > 23990)
	// Output: 24000 true
}

func ExampleCursor() {
	clip := audio.NewClip([]float32{0.1, 0.2, 0.3}, 8000)
	cur := audio.NewCursor(clip)
	cur.SetLooping(true)

	block := make([]float32, 5)
	cur.ReadInto(block)

	fmt.Println(block, cur.Position())
	// Output: [0.1 0.2 0.3 0.1 0.2] 2
}

func ExampleRegistry() {
	registry := audio.NewRegistry()
	registry.Register("wav", nil)
	registry.Register("mp3", nil)

	fmt.Println(registry.Formats())
	// Output: [mp3 wav]
}
