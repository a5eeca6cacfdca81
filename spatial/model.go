// SPDX-License-Identifier: EPL-2.0

// Package spatial owns the placed sound sources and their positions.
package spatial

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ik5/wfspbx/internal/event"
	"github.com/ik5/wfspbx/store"
	"github.com/sirupsen/logrus"
)

var (
	ErrModelFull   = errors.New("maximum number of sources reached")
	ErrUnknownNode = errors.New("unknown source node")
)

// Node is a placed source.
type Node struct {
	ID  int
	Pos Point
}

// Model assigns ids and keeps positions. Every position it accepts is
// written to the store as /source/<id>/x and /source/<id>/y.
type Model struct {
	mtx      sync.Mutex
	st       *store.Store
	max      int
	nodes    map[int]Point
	removing map[int]bool

	added   event.Bus[Node]
	removed event.Bus[Node]
}

// NewModel returns an empty model holding at most max nodes (0 = no limit).
func NewModel(st *store.Store, max int) *Model {
	return &Model{
		st:       st,
		max:      max,
		nodes:    make(map[int]Point),
		removing: make(map[int]bool),
	}
}

// nextID is the smallest non-negative id not in use.
func (m *Model) nextID() int {
	id := 0
	for {
		if _, used := m.nodes[id]; !used {
			return id
		}
		id++
	}
}

// AddNode places a node at a normalised position.
func (m *Model) AddNode(p Point) (Node, error) {
	m.mtx.Lock()
	if m.max > 0 && len(m.nodes) >= m.max {
		m.mtx.Unlock()
		return Node{}, ErrModelFull
	}
	n := Node{ID: m.nextID(), Pos: p.Clamp()}
	m.nodes[n.ID] = n.Pos
	m.mtx.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Model.AddNode",
		"id":       n.ID,
		"x":        n.Pos.X,
		"y":        n.Pos.Y,
	}).Debug("Source node added")

	m.write(n)
	m.added.Publish(n)

	return n, nil
}

// CreateNode places a node at a screen position inside area.
func (m *Model) CreateNode(screen Point, area Size) (Node, error) {
	return m.AddNode(Normalize(screen, area))
}

// MoveNode sets a node's normalised position.
func (m *Model) MoveNode(id int, p Point) error {
	m.mtx.Lock()
	if _, ok := m.nodes[id]; !ok || m.removing[id] {
		m.mtx.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	p = p.Clamp()
	m.nodes[id] = p
	m.mtx.Unlock()

	m.write(Node{ID: id, Pos: p})

	return nil
}

// DragNode moves a node to a screen position inside area.
func (m *Model) DragNode(id int, screen Point, area Size) error {
	return m.MoveNode(id, Normalize(screen, area))
}

// RemoveNode notifies removal observers and only then forgets the node, so
// resources tied to it are released while its id is still reserved.
func (m *Model) RemoveNode(id int) error {
	m.mtx.Lock()
	p, ok := m.nodes[id]
	if !ok || m.removing[id] {
		m.mtx.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	m.removing[id] = true
	m.mtx.Unlock()

	m.removed.Publish(Node{ID: id, Pos: p})

	m.mtx.Lock()
	delete(m.nodes, id)
	delete(m.removing, id)
	m.mtx.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Model.RemoveNode",
		"id":       id,
	}).Debug("Source node removed")

	return nil
}

// RemoveAll removes every node in ascending id order.
func (m *Model) RemoveAll() {
	for _, id := range m.IDs() {
		_ = m.RemoveNode(id)
	}
}

// Discard drops a node without a removal event. It rolls back an AddNode
// whose follow-up work failed. The node's coordinates leave the store too;
// renderers that already received them hold a position for a channel that
// carries no audio until the id is reused and its position sent again.
func (m *Model) Discard(id int) {
	m.mtx.Lock()
	delete(m.nodes, id)
	m.mtx.Unlock()

	m.st.Delete(store.SourcePath(id, store.AxisX))
	m.st.Delete(store.SourcePath(id, store.AxisY))
}

func (m *Model) Position(id int) (Point, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	p, ok := m.nodes[id]
	return p, ok
}

// IDs lists the live ids in ascending order.
func (m *Model) IDs() []int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	ids := make([]int, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Nodes lists the live nodes in ascending id order.
func (m *Model) Nodes() []Node {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	nodes := make([]Node, 0, len(m.nodes))
	for id, p := range m.nodes {
		nodes = append(nodes, Node{ID: id, Pos: p})
	}
	slices.SortFunc(nodes, func(a, b Node) int { return a.ID - b.ID })

	return nodes
}

func (m *Model) Len() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return len(m.nodes)
}

func (m *Model) Max() int { return m.max }

// OnAdded subscribes fn to node additions.
func (m *Model) OnAdded(fn func(Node)) (cancel func()) {
	return m.added.Subscribe(fn)
}

// OnRemoved subscribes fn to node removals. fn runs before the node is gone.
func (m *Model) OnRemoved(fn func(Node)) (cancel func()) {
	return m.removed.Subscribe(fn)
}

func (m *Model) write(n Node) {
	m.st.SetFloat(store.SourcePath(n.ID, store.AxisX), n.Pos.X)
	m.st.SetFloat(store.SourcePath(n.ID, store.AxisY), n.Pos.Y)
}
