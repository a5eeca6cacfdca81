// SPDX-License-Identifier: EPL-2.0

package node

import (
	"fmt"
	"net/netip"

	"github.com/ik5/wfspbx/config"
	"github.com/ik5/wfspbx/control"
	"github.com/ik5/wfspbx/internal/audiograph"
	"github.com/ik5/wfspbx/jacktrip"
	"github.com/ik5/wfspbx/patchbay"
	"github.com/ik5/wfspbx/renderer"
	"github.com/sirupsen/logrus"
)

// Boot builds a node from cfg: the link, the renderer graph patched to it
// and the control receiver feeding params. Any failure here is fatal for
// the caller.
func Boot(cfg config.Config, params control.ParamSetter) (n *Node, err error) {
	channels := cfg.Node.Channels

	link, err := jacktrip.New(jacktrip.Config{
		Server:      cfg.Node.Server,
		ServerPort:  cfg.Node.ServerPort,
		LocalPort:   cfg.Node.LocalUDPPort,
		Channels:    channels,
		BlockSize:   cfg.Audio.BlockSize,
		SampleRate:  cfg.Audio.SampleRate,
		IdleTimeout: cfg.Node.IdleTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("jacktrip client: %w", err)
	}
	defer func() {
		if err != nil {
			link.Close()
		}
	}()

	local, err := localAddress(cfg)
	if err != nil {
		return nil, err
	}

	g := audiograph.New(cfg.Audio.BlockSize)
	linkID := g.Add(link, channels, channels)
	wfs := g.Add(renderer.NewMonitor(), channels, channels)
	if err := patchbay.Autopatch(g, linkID, wfs, channels); err != nil {
		return nil, err
	}
	if err := g.SetSink(wfs); err != nil {
		return nil, err
	}

	conn, err := control.ListenMulticast(control.Multicast{
		Group:     cfg.Control.Group,
		Port:      cfg.Control.Port,
		Interface: cfg.Control.Interface,
	})
	if err != nil {
		return nil, fmt.Errorf("control receiver: %w", err)
	}
	rx := control.NewReceiver(conn, control.NewDispatcher(params, channels, local))

	n = New(link, rx, Options{
		ConnectTimeout: cfg.Node.ConnectTimeout,
		StatsInterval:  cfg.Node.StatsInterval,
	})
	n.graph = g
	n.closers = append(n.closers, rx, link)

	logrus.WithFields(logrus.Fields{
		"function":    "Boot",
		"address":     local.String(),
		"channels":    channels,
		"sample_rate": cfg.Audio.SampleRate,
		"block_size":  cfg.Audio.BlockSize,
	}).Info("Node booted")

	return n, nil
}

func localAddress(cfg config.Config) (netip.Addr, error) {
	if cfg.Node.LocalAddress != "" {
		addr, err := netip.ParseAddr(cfg.Node.LocalAddress)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("local address: %w", err)
		}
		return addr, nil
	}

	addr, err := control.LocalIPv4(cfg.Control.Interface)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("local address: %w", err)
	}

	return addr, nil
}
