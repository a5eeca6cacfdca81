// SPDX-License-Identifier: EPL-2.0

// Package output plays a float32 interleaved stream on the default audio
// device.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

type Config struct {
	SampleRate int
	Channels   int
	// Buffer is the device buffer length; zero lets oto choose.
	Buffer time.Duration
}

func (c Config) options() (*oto.NewContextOptions, error) {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return nil, fmt.Errorf("output: invalid format %d Hz, %d channels", c.SampleRate, c.Channels)
	}

	return &oto.NewContextOptions{
		SampleRate:   c.SampleRate,
		ChannelCount: c.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   c.Buffer,
	}, nil
}

// Device pulls audio from a reader for as long as it is open. oto allows
// one context per process, so only one Device may be opened.
type Device struct {
	ctx    *oto.Context
	player *oto.Player
}

// Open starts playing src, which must yield interleaved float32 little
// endian frames in cfg's layout and never block for long.
func Open(cfg Config, src io.Reader) (*Device, error) {
	op, err := cfg.options()
	if err != nil {
		return nil, err
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("output: cannot create oto context: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(src)
	player.Play()

	logrus.WithFields(logrus.Fields{
		"function":    "Open",
		"sample_rate": cfg.SampleRate,
		"channels":    cfg.Channels,
	}).Info("Audio output started")

	return &Device{ctx: ctx, player: player}, nil
}

// Err reports a playback error, if any.
func (d *Device) Err() error {
	return d.player.Err()
}

func (d *Device) Close() error {
	if err := d.player.Close(); err != nil {
		return fmt.Errorf("output: cannot close oto player: %w", err)
	}
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("output: cannot suspend oto context: %w", err)
	}

	return nil
}
