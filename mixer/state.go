// SPDX-License-Identifier: EPL-2.0

package mixer

// State is a playback transition reported to subscribers.
type State int

const (
	// justStopped is logged but never published.
	justStopped State = iota

	Started
	Stopped
	// Ended means the lowest keyed source ran out and is not looping.
	Ended
)

func (s State) String() string {
	switch s {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	case Ended:
		return "ended"
	default:
		return "just-stopped"
	}
}
