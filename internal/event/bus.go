// SPDX-License-Identifier: EPL-2.0

// Package event provides revocable, ordered observer lists.
package event

import "sync"

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Bus delivers each published value to every subscriber, synchronously and
// in subscription order. Handlers run outside the bus lock, so they may
// subscribe or cancel.
type Bus[T any] struct {
	mtx  sync.Mutex
	next uint64
	subs []subscriber[T]
}

// Subscribe registers fn and returns the function that revokes it. Calling
// the revoke function more than once is harmless.
func (b *Bus[T]) Subscribe(fn func(T)) (cancel func()) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.next++
	id := b.next
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})

	return func() { b.remove(id) }
}

func (b *Bus[T]) remove(id uint64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			// copy so snapshots held by Publish stay intact
			subs := make([]subscriber[T], 0, len(b.subs)-1)
			subs = append(subs, b.subs[:i]...)
			b.subs = append(subs, b.subs[i+1:]...)
			return
		}
	}
}

func (b *Bus[T]) Publish(v T) {
	b.mtx.Lock()
	subs := b.subs
	b.mtx.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

func (b *Bus[T]) Len() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return len(b.subs)
}
