// SPDX-License-Identifier: EPL-2.0

// Command wfsnode runs on a renderer: it keeps the JackTrip link to the hub
// up, applies multicast control messages to the renderer parameters and
// plays the rendered channels.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/wfspbx/audio"
	"github.com/ik5/wfspbx/config"
	"github.com/ik5/wfspbx/internal/logging"
	"github.com/ik5/wfspbx/node"
	"github.com/ik5/wfspbx/output"
	"github.com/ik5/wfspbx/renderer"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "Deployment YAML file. Built-in defaults when empty.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Wave field synthesis renderer node.\nUsage: %s [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wfsnode: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Configure(cfg.Log.Level, cfg.Log.JSON, nil); err != nil {
		fmt.Fprintf(os.Stderr, "wfsnode: %v\n", err)
		os.Exit(1)
	}

	params := renderer.NewParams()
	n, err := node.Boot(cfg, params)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Fatal("Failed to boot node")
	}
	defer n.Close()

	dev, err := output.Open(output.Config{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Node.Channels,
	}, audio.NewInterleaver(n.Graph(), cfg.Node.Channels, cfg.Audio.BlockSize))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Fatal("Failed to start audio output")
	}
	defer dev.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.Run(gctx) })
	g.Go(func() error {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				if err := dev.Err(); err != nil {
					return fmt.Errorf("audio output: %w", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("Node stopped")
		n.Close()
		dev.Close()
		os.Exit(1)
	}
}
