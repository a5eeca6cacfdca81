// SPDX-License-Identifier: EPL-2.0

package control

import "errors"

var (
	ErrEmptyPacket       = errors.New("empty control packet")
	ErrMalformedPacket   = errors.New("malformed control packet")
	ErrUnknownAddress    = errors.New("no handler for address")
	ErrBadIndex          = errors.New("address index is not a number")
	ErrChannelOutOfRange = errors.New("source index outside channel range")
	ErrBadPayload        = errors.New("unexpected message payload")
	ErrForeignModule     = errors.New("module assignment for another node")
	ErrNotConnected      = errors.New("control sender not connected")
)
