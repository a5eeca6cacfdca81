// SPDX-License-Identifier: EPL-2.0

// Package audiograph is a small block-based processing graph. Nodes have
// numbered inputs and outputs joined by cords; every cord delays its signal
// by one block, so feedback loops need no ordering.
package audiograph

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownNode = errors.New("unknown graph node")
	ErrBadPort     = errors.New("port index out of range")
	ErrNoSink      = errors.New("graph has no sink")
)

// Processor computes one block. in and out hold one slice per port, all of
// the graph's block size. out is cleared before every call.
type Processor interface {
	Process(in, out [][]float32)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(in, out [][]float32)

func (f ProcessorFunc) Process(in, out [][]float32) { f(in, out) }

type NodeID int

// Cord joins output Out of node From to input In of node To.
type Cord struct {
	From NodeID
	Out  int
	To   NodeID
	In   int
}

type node struct {
	proc Processor
	in   [][]float32
	out  [][]float32
	prev [][]float32
}

type Graph struct {
	mtx     sync.Mutex
	block   int
	nodes   []*node
	cords   []Cord
	sink    NodeID
	hasSink bool
}

func New(blockSize int) *Graph {
	return &Graph{block: blockSize}
}

func (g *Graph) BlockSize() int { return g.block }

func (g *Graph) buffers(n int) [][]float32 {
	b := make([][]float32, n)
	for i := range b {
		b[i] = make([]float32, g.block)
	}

	return b
}

// Add inserts a node with the given port counts.
func (g *Graph) Add(p Processor, inputs, outputs int) NodeID {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	g.nodes = append(g.nodes, &node{
		proc: p,
		in:   g.buffers(inputs),
		out:  g.buffers(outputs),
		prev: g.buffers(outputs),
	})

	return NodeID(len(g.nodes) - 1)
}

// Connect adds a cord. Connecting an existing cord again is a no-op.
func (g *Graph) Connect(from NodeID, out int, to NodeID, in int) error {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	src, err := g.node(from)
	if err != nil {
		return err
	}
	dst, err := g.node(to)
	if err != nil {
		return err
	}
	if out < 0 || out >= len(src.out) {
		return fmt.Errorf("%w: output %d of node %d", ErrBadPort, out, from)
	}
	if in < 0 || in >= len(dst.in) {
		return fmt.Errorf("%w: input %d of node %d", ErrBadPort, in, to)
	}

	c := Cord{From: from, Out: out, To: to, In: in}
	for _, existing := range g.cords {
		if existing == c {
			return nil
		}
	}
	g.cords = append(g.cords, c)

	return nil
}

func (g *Graph) node(id NodeID) (*node, error) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}

	return g.nodes[id], nil
}

// Cords lists the cords in the order they were added.
func (g *Graph) Cords() []Cord {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	return append([]Cord(nil), g.cords...)
}

// SetSink selects the node whose outputs Render returns.
func (g *Graph) SetSink(id NodeID) error {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if _, err := g.node(id); err != nil {
		return err
	}
	g.sink, g.hasSink = id, true

	return nil
}

// Process runs every node once.
func (g *Graph) Process() {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	g.process()
}

func (g *Graph) process() {
	for _, n := range g.nodes {
		for _, ch := range n.in {
			clear(ch)
		}
	}
	for _, c := range g.cords {
		src := g.nodes[c.From].prev[c.Out]
		dst := g.nodes[c.To].in[c.In]
		for i, s := range src {
			dst[i] += s
		}
	}

	for _, n := range g.nodes {
		for _, ch := range n.out {
			clear(ch)
		}
		n.proc.Process(n.in, n.out)
	}

	for _, n := range g.nodes {
		n.prev, n.out = n.out, n.prev
	}
}

// Render processes one block and copies the sink's outputs into out. Extra
// output channels are cleared. len(out[i]) must equal the block size.
func (g *Graph) Render(out [][]float32) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	g.process()

	if !g.hasSink {
		for _, ch := range out {
			clear(ch)
		}
		return
	}

	produced := g.nodes[g.sink].prev
	for i, ch := range out {
		if i < len(produced) {
			copy(ch, produced[i])
		} else {
			clear(ch)
		}
	}
}
