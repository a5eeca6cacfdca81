// SPDX-License-Identifier: EPL-2.0

//go:build !cgo

package main

import (
	"errors"

	"github.com/ik5/wfspbx/midictl"
)

func listenMIDI(*midictl.Surface, string) (stop func(), err error) {
	// rtmidi needs cgo
	return nil, errors.New("built without cgo, MIDI is unavailable")
}
