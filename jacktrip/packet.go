// SPDX-License-Identifier: EPL-2.0

package jacktrip

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/wfspbx/internal/pcm"
)

// PacketSize is the encoded length of a packet with the given layout.
func PacketSize(channels, frames int) int {
	return HeaderSize + channels*frames*2
}

// EncodePacket writes h followed by block as 16-bit samples, one channel
// after another, into b. b must hold PacketSize bytes. h.BufferSize is
// taken from the block.
func EncodePacket(b []byte, h Header, block [][]float32) int {
	frames := 0
	if len(block) > 0 {
		frames = len(block[0])
	}
	h.BufferSize = uint16(frames)
	h.Put(b)

	at := HeaderSize
	for _, ch := range block {
		for _, s := range ch {
			binary.LittleEndian.PutUint16(b[at:], uint16(pcm.Float32ToInt16(s)))
			at += 2
		}
	}

	return at
}

// DecodePacket parses a packet and writes its samples into block, which
// must have one slice per channel, each h.BufferSize long.
func DecodePacket(b []byte, block [][]float32) (Header, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return h, err
	}

	frames := int(h.BufferSize)
	payload := b[HeaderSize:]
	if frames == 0 || len(payload)%(frames*2) != 0 {
		return h, fmt.Errorf("%w: %d bytes for %d frames", ErrPayloadSize, len(payload), frames)
	}
	if channels := len(payload) / (frames * 2); channels != len(block) {
		return h, fmt.Errorf("%w: got %d, want %d", ErrChannelMismatch, channels, len(block))
	}

	for _, ch := range block {
		if len(ch) != frames {
			return h, fmt.Errorf("%w: block of %d frames, packet of %d", ErrPayloadSize, len(ch), frames)
		}
	}

	at := 0
	for _, ch := range block {
		for i := range ch {
			ch[i] = pcm.Int16ToFloat32(int16(binary.LittleEndian.Uint16(payload[at:])))
			at += 2
		}
	}

	return h, nil
}
