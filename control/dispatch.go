// SPDX-License-Identifier: EPL-2.0

package control

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/hypebeast/go-osc/osc"
	"github.com/ik5/wfspbx/store"
	"github.com/sirupsen/logrus"
)

// ModuleIDKey is the parameter that receives the module number assigned to
// this node.
const ModuleIDKey = "moduleID"

// ParamSetter is the renderer's keyed parameter input.
type ParamSetter interface {
	SetParam(key string, value float64)
}

// ParamSetterFunc adapts a function to ParamSetter.
type ParamSetterFunc func(key string, value float64)

func (f ParamSetterFunc) SetParam(key string, value float64) { f(key, value) }

// SegmentAt returns the path segment that starts at offset and runs to the
// next '/' or the end of address.
func SegmentAt(address string, offset int) string {
	if offset < 0 || offset >= len(address) {
		return ""
	}
	seg := address[offset:]
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}

	return seg
}

// Dispatcher routes decoded control messages to a ParamSetter.
type Dispatcher struct {
	setter   ParamSetter
	channels int
	local    netip.Addr
}

// NewDispatcher accepts sources below channels and module assignments
// addressed to local.
func NewDispatcher(setter ParamSetter, channels int, local netip.Addr) *Dispatcher {
	return &Dispatcher{
		setter:   setter,
		channels: channels,
		local:    local,
	}
}

// Dispatch handles a single message. The returned error says why a message
// was dropped; HandleDatagram logs it.
func (d *Dispatcher) Dispatch(msg *osc.Message) error {
	switch {
	case strings.HasPrefix(msg.Address, store.SourceNamespace):
		return d.source(msg)
	case strings.HasPrefix(msg.Address, store.ModuleNamespace):
		return d.module(msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAddress, msg.Address)
	}
}

func (d *Dispatcher) source(msg *osc.Message) error {
	offset := len(store.SourceNamespace)
	index, err := strconv.Atoi(SegmentAt(msg.Address, offset))
	if err != nil || index < 0 {
		return fmt.Errorf("%w: %s", ErrBadIndex, msg.Address)
	}
	if index >= d.channels {
		return fmt.Errorf("%w: %d >= %d", ErrChannelOutOfRange, index, d.channels)
	}

	value, err := floatArg(msg)
	if err != nil {
		return err
	}

	d.setter.SetParam(msg.Address[offset:], value)

	return nil
}

func (d *Dispatcher) module(msg *osc.Message) error {
	if len(msg.Arguments) != 1 {
		return fmt.Errorf("%w: %d arguments", ErrBadPayload, len(msg.Arguments))
	}
	s, ok := msg.Arguments[0].(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrBadPayload, msg.Arguments[0])
	}

	addr, err := netip.ParseAddr(s)
	if err != nil || addr != d.local {
		return ErrForeignModule
	}

	id, err := strconv.Atoi(SegmentAt(msg.Address, len(store.ModuleNamespace)))
	if err != nil || id < 0 {
		return fmt.Errorf("%w: %s", ErrBadIndex, msg.Address)
	}

	d.setter.SetParam(ModuleIDKey, float64(id))

	return nil
}

func floatArg(msg *osc.Message) (float64, error) {
	if len(msg.Arguments) != 1 {
		return 0, fmt.Errorf("%w: %d arguments", ErrBadPayload, len(msg.Arguments))
	}

	switch v := msg.Arguments[0].(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int32:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrBadPayload, v)
	}
}

// HandleDatagram decodes data and dispatches every message in it. It returns
// how many messages reached the setter.
func (d *Dispatcher) HandleDatagram(data []byte) int {
	msgs, err := Decode(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "HandleDatagram",
			"size":     len(data),
			"error":    err.Error(),
		}).Warn("Dropping undecodable control packet")
		return 0
	}

	handled := 0
	for _, msg := range msgs {
		err := d.Dispatch(msg)
		switch {
		case err == nil:
			handled++
		case errors.Is(err, ErrForeignModule):
			logrus.WithFields(logrus.Fields{
				"function": "HandleDatagram",
				"address":  msg.Address,
			}).Debug("Ignoring module assignment for another node")
		default:
			logrus.WithFields(logrus.Fields{
				"function": "HandleDatagram",
				"address":  msg.Address,
				"error":    err.Error(),
			}).Warn("Dropping control message")
		}
	}

	return handled
}
