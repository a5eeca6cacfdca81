// SPDX-License-Identifier: EPL-2.0

// Package store holds the observable property table shared by the control
// surface and the control transport.
package store

import (
	"maps"
	"sync"

	"github.com/ik5/wfspbx/internal/event"
)

// Change is one property mutation.
type Change struct {
	Path  string
	Value Value
}

// Store maps paths to values. Observers are notified synchronously, in
// subscription order, after the value is stored. Sets are serialised with
// their notification, so observers see changes in the order they were
// stored. An observer must not call Set.
type Store struct {
	notify  sync.Mutex // held from store to publish
	mtx     sync.RWMutex
	values  map[string]Value
	changes event.Bus[Change]
}

func New() *Store {
	return &Store{values: make(map[string]Value)}
}

func (s *Store) Set(path string, v Value) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mtx.Lock()
	s.values[path] = v
	s.mtx.Unlock()

	s.changes.Publish(Change{Path: path, Value: v})
}

func (s *Store) SetFloat(path string, v float64) { s.Set(path, Float(v)) }
func (s *Store) SetString(path, v string)        { s.Set(path, String(v)) }

func (s *Store) Get(path string) (Value, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	v, ok := s.values[path]
	return v, ok
}

// Delete forgets path without notifying observers.
func (s *Store) Delete(path string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.values, path)
}

// Snapshot copies the current table.
func (s *Store) Snapshot() map[string]Value {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return maps.Clone(s.values)
}

// Subscribe registers fn for every subsequent Set. The returned function
// revokes it.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	return s.changes.Subscribe(fn)
}
