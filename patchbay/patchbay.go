// SPDX-License-Identifier: EPL-2.0

// Package patchbay discovers remote audio endpoints by port name and wires
// the local outputs into them.
package patchbay

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// ConnectAll fans local output i out to every remote input matching the
// remote format at index i, for i = 1, 2, ... until no local output i
// exists. It returns how many indices were examined and how many connect
// calls succeeded. Failed connects are logged and skipped.
func ConnectAll(g Graph, client, remoteFormat string) (iterations, connections int, err error) {
	for i := 1; ; i++ {
		iterations++

		outs, err := g.Ports(OutputPattern(client, i), Output)
		if err != nil {
			return iterations, connections, fmt.Errorf("list outputs %d: %w", i, err)
		}
		if len(outs) == 0 {
			return iterations, connections, nil
		}

		ins, err := g.Ports(RemotePattern(remoteFormat, i), Input)
		if err != nil {
			return iterations, connections, fmt.Errorf("list remote inputs %d: %w", i, err)
		}

		for _, in := range ins {
			if err := g.Connect(outs[0], in); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "ConnectAll",
					"from":     outs[0],
					"to":       in,
					"error":    err.Error(),
				}).Warn("Failed to connect ports")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"function": "ConnectAll",
				"from":     outs[0],
				"to":       in,
			}).Debug("Connected ports")
			connections++
		}
	}
}

// PatchBay owns a Graph client. If the client cannot be opened the patch
// bay stays inert until the next Refresh.
type PatchBay struct {
	mtx          sync.Mutex
	open         Opener
	graph        Graph
	client       string
	remoteFormat string
	endpoints    []string
}

func New(open Opener, client, remoteFormat string) *PatchBay {
	if remoteFormat == "" {
		remoteFormat = DefaultRemotePattern
	}

	return &PatchBay{
		open:         open,
		client:       client,
		remoteFormat: remoteFormat,
	}
}

// Refresh opens the graph if needed, rediscovers the remote endpoints and
// connects every local output to them.
func (p *PatchBay) Refresh() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.graph == nil {
		g, err := p.open()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "PatchBay.Refresh",
				"error":    err.Error(),
			}).Error("Failed to open audio graph client")
			return fmt.Errorf("%w: %w", ErrGraphUnavailable, err)
		}
		p.graph = g
	}

	remote, err := p.graph.Ports(RemotePattern(p.remoteFormat, 1), Input)
	if err != nil {
		return fmt.Errorf("discover endpoints: %w", err)
	}
	endpoints := UniqueEndpoints(remote)
	SortEndpoints(endpoints)
	p.endpoints = endpoints

	iterations, connections, err := ConnectAll(p.graph, p.client, p.remoteFormat)

	logrus.WithFields(logrus.Fields{
		"function":    "PatchBay.Refresh",
		"endpoints":   len(endpoints),
		"iterations":  iterations,
		"connections": connections,
	}).Info("Patch bay refreshed")

	return err
}

// Endpoints returns the addresses found by the last Refresh, ordered by
// final octet.
func (p *PatchBay) Endpoints() []string {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return slices.Clone(p.endpoints)
}

func (p *PatchBay) Available() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.graph != nil
}

func (p *PatchBay) Close() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.graph == nil {
		return nil
	}
	err := p.graph.Close()
	p.graph = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
