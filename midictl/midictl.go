// SPDX-License-Identifier: EPL-2.0

// Package midictl moves sources from a MIDI fader box. Controller 2k drives
// the x coordinate of source k and controller 2k+1 its y coordinate.
package midictl

import (
	"errors"
	"fmt"

	"github.com/ik5/wfspbx/spatial"
	"github.com/ik5/wfspbx/store"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
)

// AnyChannel accepts control changes on every MIDI channel.
const AnyChannel = -1

// Move is one coordinate update decoded from a control change.
type Move struct {
	Source int
	Axis   store.Axis
	Value  float64
}

// Map decodes a control change into a coordinate update. Other messages
// and channels not matching channel give false.
func Map(msg midi.Message, channel int) (Move, bool) {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		return Move{}, false
	}
	if channel != AnyChannel && int(ch) != channel {
		return Move{}, false
	}

	axis := store.AxisX
	if cc%2 == 1 {
		axis = store.AxisY
	}

	return Move{
		Source: int(cc) / 2,
		Axis:   axis,
		Value:  float64(val) / 127,
	}, true
}

// Positioner is the source model the surface moves.
type Positioner interface {
	Position(id int) (spatial.Point, bool)
	MoveNode(id int, p spatial.Point) error
}

type Surface struct {
	model   Positioner
	channel int
}

func NewSurface(model Positioner, channel int) *Surface {
	return &Surface{model: model, channel: channel}
}

// Handle applies one MIDI message. Faders for sources that do not exist are
// ignored.
func (s *Surface) Handle(msg midi.Message, _ int32) {
	mv, ok := Map(msg, s.channel)
	if !ok {
		return
	}

	p, ok := s.model.Position(mv.Source)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "Surface.Handle",
			"source":   mv.Source,
		}).Debug("Fader for unknown source")
		return
	}

	if mv.Axis == store.AxisX {
		p.X = mv.Value
	} else {
		p.Y = mv.Value
	}

	if err := s.model.MoveNode(mv.Source, p); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Surface.Handle",
			"source":   mv.Source,
			"error":    err.Error(),
		}).Debug("Fader move dropped")
	}
}

// Listen opens the first input port whose name contains port and feeds it
// to Handle until stop is called. It needs a registered MIDI driver.
func (s *Surface) Listen(port string) (stop func(), err error) {
	in, err := midi.FindInPort(port)
	if err != nil {
		return nil, fmt.Errorf("midi input %q: %w", port, err)
	}
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("open midi input %q: %w", port, err)
	}

	stop, err = midi.ListenTo(in, s.Handle)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("listen %q: %w", port, err), in.Close())
	}

	logrus.WithFields(logrus.Fields{
		"function": "Surface.Listen",
		"port":     in.String(),
	}).Info("Listening for MIDI faders")

	return func() {
		stop()
		in.Close()
	}, nil
}
