// SPDX-License-Identifier: EPL-2.0

package patchbay

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

var (
	ErrGraphUnavailable = errors.New("audio graph unavailable")
	ErrUnknownPort      = errors.New("unknown port")
)

// Direction of a port as seen by the audio server.
type Direction int

const (
	Input Direction = iota + 1
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// Graph is the platform audio routing service.
type Graph interface {
	// Ports lists ports whose full name matches the regular expression
	// pattern and whose direction is dir.
	Ports(pattern string, dir Direction) ([]string, error)
	// Connect wires an output port to an input port. Wiring an existing
	// connection again must not fail.
	Connect(src, dst string) error
	Close() error
}

// Opener opens a Graph client.
type Opener func() (Graph, error)

// MemoryGraph is an in-process Graph.
type MemoryGraph struct {
	mtx   sync.Mutex
	ports []memPort
	links map[[2]string]bool
	order [][2]string
}

type memPort struct {
	name string
	dir  Direction
}

func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{links: make(map[[2]string]bool)}
}

// AddPort registers a port. Ports are listed in registration order.
func (g *MemoryGraph) AddPort(name string, dir Direction) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	g.ports = append(g.ports, memPort{name: name, dir: dir})
}

func (g *MemoryGraph) Ports(pattern string, dir Direction) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("port pattern: %w", err)
	}

	g.mtx.Lock()
	defer g.mtx.Unlock()

	var names []string
	for _, p := range g.ports {
		if p.dir == dir && re.MatchString(p.name) {
			names = append(names, p.name)
		}
	}

	return names, nil
}

func (g *MemoryGraph) lookup(name string) (Direction, bool) {
	for _, p := range g.ports {
		if p.name == name {
			return p.dir, true
		}
	}

	return 0, false
}

func (g *MemoryGraph) Connect(src, dst string) error {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if d, ok := g.lookup(src); !ok || d != Output {
		return fmt.Errorf("%w: output %s", ErrUnknownPort, src)
	}
	if d, ok := g.lookup(dst); !ok || d != Input {
		return fmt.Errorf("%w: input %s", ErrUnknownPort, dst)
	}

	key := [2]string{src, dst}
	if !g.links[key] {
		g.links[key] = true
		g.order = append(g.order, key)
	}

	return nil
}

// Connections lists distinct connections in the order they were made.
func (g *MemoryGraph) Connections() [][2]string {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	return append([][2]string(nil), g.order...)
}

func (g *MemoryGraph) Close() error { return nil }
