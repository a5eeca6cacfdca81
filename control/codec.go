// SPDX-License-Identifier: EPL-2.0

package control

import (
	"fmt"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/ik5/wfspbx/store"
)

// Encode frames one store change as a single-element OSC bundle. Module
// assignments carry their address as a string, everything else a float32.
func Encode(c store.Change) ([]byte, error) {
	msg := osc.NewMessage(c.Path)
	if store.IsModulePath(c.Path) {
		msg.Append(c.Value.AsString())
	} else {
		msg.Append(float32(c.Value.AsFloat()))
	}

	bundle := osc.NewBundle(time.Now())
	if err := bundle.Append(msg); err != nil {
		return nil, fmt.Errorf("bundle %s: %w", c.Path, err)
	}

	data, err := bundle.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", c.Path, err)
	}

	return data, nil
}

// Decode parses a datagram into its messages. Bundles, nested ones
// included, are flattened in order. A bundle without elements is reported
// as ErrEmptyPacket.
func Decode(data []byte) (msgs []*osc.Message, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyPacket
	}

	// the parser indexes past short buffers on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			msgs, err = nil, fmt.Errorf("%w: %v", ErrMalformedPacket, r)
		}
	}()

	pkt, err := osc.ParsePacket(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPacket, err)
	}

	switch p := pkt.(type) {
	case *osc.Bundle:
		msgs = flatten(p, msgs)
		if len(msgs) == 0 {
			return nil, ErrEmptyPacket
		}
		return msgs, nil
	case *osc.Message:
		return []*osc.Message{p}, nil
	default:
		return nil, ErrMalformedPacket
	}
}

func flatten(b *osc.Bundle, into []*osc.Message) []*osc.Message {
	into = append(into, b.Messages...)
	for _, nested := range b.Bundles {
		into = flatten(nested, into)
	}

	return into
}
