// SPDX-License-Identifier: EPL-2.0

package jacktrip

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the encoded length of Header.
const HeaderSize = 16

// Header is the JackTrip default packet header. All fields are little
// endian on the wire.
type Header struct {
	Timestamp     uint64
	Seq           uint16
	BufferSize    uint16
	RateCode      uint8
	BitResolution uint8
	InChannels    uint8
	OutChannels   uint8
}

var rates = []int{22050, 32000, 44100, 48000, 88200, 96000, 192000}

// RateCode maps a sample rate to its header code.
func RateCode(rate int) (uint8, error) {
	for i, r := range rates {
		if r == rate {
			return uint8(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %d", ErrUnknownRate, rate)
}

// SampleRate maps a header code back to a sample rate.
func SampleRate(code uint8) (int, error) {
	if int(code) >= len(rates) {
		return 0, fmt.Errorf("%w: code %d", ErrUnknownRate, code)
	}

	return rates[code], nil
}

// Put writes the header into the first HeaderSize bytes of b.
func (h Header) Put(b []byte) {
	_ = b[HeaderSize-1]
	binary.LittleEndian.PutUint64(b[0:], h.Timestamp)
	binary.LittleEndian.PutUint16(b[8:], h.Seq)
	binary.LittleEndian.PutUint16(b[10:], h.BufferSize)
	b[12] = h.RateCode
	b[13] = h.BitResolution
	b[14] = h.InChannels
	b[15] = h.OutChannels
}

func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(b))
	}

	return Header{
		Timestamp:     binary.LittleEndian.Uint64(b[0:]),
		Seq:           binary.LittleEndian.Uint16(b[8:]),
		BufferSize:    binary.LittleEndian.Uint16(b[10:]),
		RateCode:      b[12],
		BitResolution: b[13],
		InChannels:    b[14],
		OutChannels:   b[15],
	}, nil
}

var exitPacket = bytes.Repeat([]byte{0xff}, ExitPacketSize)

// ExitPacket returns the packet that tells the peer the session is over.
func ExitPacket() []byte {
	return bytes.Clone(exitPacket)
}

func IsExitPacket(b []byte) bool {
	return bytes.Equal(b, exitPacket)
}
