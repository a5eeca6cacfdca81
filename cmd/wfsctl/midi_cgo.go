// SPDX-License-Identifier: EPL-2.0

//go:build cgo

package main

import (
	"github.com/ik5/wfspbx/midictl"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func listenMIDI(s *midictl.Surface, port string) (stop func(), err error) {
	return s.Listen(port)
}
