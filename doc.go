// SPDX-License-Identifier: EPL-2.0

// Package wfspbx is the desktop and renderer side of a wave field synthesis
// rig: sound sources placed on a plane are streamed to networked renderer
// nodes, which turn positions into speaker feeds.
//
// # Layout
//
// The desktop binary, cmd/wfsctl, ties these packages together:
//   - formats decodes WAV, AIFF, MP3 and Ogg Vorbis files into clips
//   - mixer plays every placed clip into its own output channel
//   - spatial and store keep source positions and renderer parameters
//   - control multicasts every store change to the renderers
//   - patchbay wires the mixer's outputs into every connected renderer
//   - controller binds the above to user operations
//   - midictl and script drive the controller from faders and Lua
//
// The renderer binary, cmd/wfsnode, keeps a JackTrip link (package jacktrip)
// to the hub, applies control messages to the renderer parameters and plays
// what it receives (packages node and renderer).
//
// # Control messages
//
// Each store change is sent as one OSC message whose address is the store
// path, for example:
//
//	/source/0/x   0.25
//	/source/0/y   0.75
//	/module/1     "192.168.10.101"
//
// # Configuration
//
// Both binaries read the same YAML deployment file. See package config for
// the fields and their defaults.
package wfspbx
