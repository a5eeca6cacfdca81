// SPDX-License-Identifier: EPL-2.0

// Command wfsctl is the desktop control surface: it mixes the placed
// sources into the local audio output, wires that output into every
// connected renderer and multicasts positions and module assignments.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/wfspbx/audio"
	"github.com/ik5/wfspbx/config"
	"github.com/ik5/wfspbx/control"
	"github.com/ik5/wfspbx/controller"
	"github.com/ik5/wfspbx/formats"
	"github.com/ik5/wfspbx/internal/logging"
	"github.com/ik5/wfspbx/midictl"
	"github.com/ik5/wfspbx/mixer"
	"github.com/ik5/wfspbx/output"
	"github.com/ik5/wfspbx/patchbay"
	"github.com/ik5/wfspbx/script"
	"github.com/ik5/wfspbx/spatial"
	"github.com/ik5/wfspbx/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "Deployment YAML file. Built-in defaults when empty.")
	scriptPath := flag.String("script", "", "Lua script to run once everything is connected.")
	midiPort := flag.String("midi", "", "MIDI input port (name substring) whose faders move sources.")
	midiChannel := flag.Int("midi-channel", midictl.AnyChannel, "MIDI channel to listen on, -1 for all.")
	refresh := flag.Duration("refresh", 0, "Refresh the patch bay periodically. SIGHUP always refreshes.")
	flag.Usage = printUsage
	flag.Parse()

	if err := run(*configPath, *scriptPath, *midiPort, *midiChannel, *refresh, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "wfsctl: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Wave field synthesis control surface.\nUsage: %s [flags] [audio file ...]\n", os.Args[0])
	flag.PrintDefaults()
}

func run(configPath, scriptPath, midiPort string, midiChannel int, refresh time.Duration, files []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Configure(cfg.Log.Level, cfg.Log.JSON, nil); err != nil {
		return err
	}

	st := store.New()
	model := spatial.NewModel(st, cfg.Audio.MaxSources)
	mix := mixer.New(mixer.Config{
		Channels:    cfg.Audio.Channels,
		MaxSources:  cfg.Audio.MaxSources,
		StopTimeout: cfg.Audio.StopTimeout,
		BlockSize:   cfg.Audio.BlockSize,
	})
	cancelStates := mix.Subscribe(func(s mixer.State) {
		logrus.WithFields(logrus.Fields{
			"function": "wfsctl",
			"state":    s.String(),
		}).Info("Playback state changed")
	})
	defer cancelStates()

	sender := control.NewSender(st, control.MulticastDialer(control.Multicast{
		Group:     cfg.Control.Group,
		Port:      cfg.Control.Port,
		Bind:      cfg.Control.Bind,
		Interface: cfg.Control.Interface,
		TTL:       cfg.Control.TTL,
		Loopback:  cfg.Control.Loopback,
	}))
	pb := patchbay.New(patchbay.OpenJack(), cfg.PatchBay.ClientName, cfg.PatchBay.RemotePattern)

	ctl := controller.New(controller.Config{
		SampleRate: cfg.Audio.SampleRate,
		Modules:    cfg.Layout.Modules(),
	}, controller.Deps{
		Store:    st,
		Model:    model,
		Mixer:    mix,
		Loader:   formats.NewLoader(formats.Registry()),
		PatchBay: pb,
		Sender:   sender,
	})
	defer ctl.Close()

	dev, err := output.Open(output.Config{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	}, audio.NewInterleaver(mix, cfg.Audio.Channels, cfg.Audio.BlockSize))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "wfsctl",
			"error":    err.Error(),
		}).Error("No audio output, sources will not be heard")
	} else {
		defer dev.Close()
	}

	if err := ctl.Refresh(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "wfsctl",
			"error":    err.Error(),
		}).Warn("Initial refresh incomplete")
	}

	for i, f := range files {
		p := spatial.Point{X: float64(i+1) / float64(len(files)+1), Y: 0.5}
		if _, err := ctl.Place(p, f); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "wfsctl",
				"file":     f,
				"error":    err.Error(),
			}).Warn("Could not place source")
		}
	}

	if midiPort != "" {
		stop, err := listenMIDI(midictl.NewSurface(model, midiChannel), midiPort)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "wfsctl",
				"error":    err.Error(),
			}).Error("MIDI control unavailable")
		} else {
			defer stop()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if scriptPath != "" {
		g.Go(func() error {
			err := script.New(ctl).RunFile(gctx, scriptPath)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)

		var tick <-chan time.Time
		if refresh > 0 {
			t := time.NewTicker(refresh)
			defer t.Stop()
			tick = t.C
		}

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
			case <-tick:
			}
			if err := ctl.Refresh(); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "wfsctl",
					"error":    err.Error(),
				}).Warn("Refresh incomplete")
			}
		}
	})

	if dev != nil {
		g.Go(func() error { return watchDevice(gctx, dev) })
	}

	return g.Wait()
}

func watchDevice(ctx context.Context, dev *output.Device) error {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := dev.Err(); err != nil {
				return fmt.Errorf("audio output: %w", err)
			}
		}
	}
}
