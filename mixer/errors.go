// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	ErrMixerFull         = errors.New("mixer already holds the maximum number of sources")
	ErrChannelOutOfRange = errors.New("source key is not a valid output channel")
	ErrSourceExists      = errors.New("a source already uses this key")
	ErrUnplayableClip    = errors.New("clip has no samples")
)
