// SPDX-License-Identifier: EPL-2.0

package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetNotifiesInOrder(t *testing.T) {
	s := New()

	var first, second []Change
	s.Subscribe(func(c Change) { first = append(first, c) })
	s.Subscribe(func(c Change) {
		// the value is visible to observers
		v, ok := s.Get(c.Path)
		require.True(t, ok)
		assert.Equal(t, c.Value, v)
		second = append(second, c)
	})

	s.SetFloat(SourcePath(0, AxisX), 0.25)
	s.SetString(ModulePath(1), "192.168.10.101")
	s.SetFloat(SourcePath(0, AxisX), 0.5)

	want := []Change{
		{Path: "/source/0/x", Value: Float(0.25)},
		{Path: "/module/1", Value: String("192.168.10.101")},
		{Path: "/source/0/x", Value: Float(0.5)},
	}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)

	v, _ := s.Get("/source/0/x")
	assert.InDelta(t, 0.5, v.AsFloat(), 1e-9)
	assert.Len(t, s.Snapshot(), 2)
}

func TestStore_ConcurrentSetsPublishInStoredOrder(t *testing.T) {
	s := New()
	path := SourcePath(0, AxisX)

	var last Value
	s.Subscribe(func(c Change) { last = c.Value })

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				s.SetFloat(path, float64(w*1000+i))
			}
		}()
	}
	wg.Wait()

	v, ok := s.Get(path)
	require.True(t, ok)
	assert.Equal(t, v, last, "the last published value is the stored one")
}

func TestStore_Delete(t *testing.T) {
	s := New()

	notified := 0
	s.Subscribe(func(Change) { notified++ })

	s.SetFloat(SourcePath(3, AxisY), 0.5)
	s.Delete(SourcePath(3, AxisY))
	s.Delete("/never/set")

	_, ok := s.Get(SourcePath(3, AxisY))
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, 1, notified)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New()
	calls := 0
	unsubscribe := s.Subscribe(func(Change) { calls++ })

	s.SetFloat("/a", 1)
	unsubscribe()
	s.SetFloat("/a", 2)

	assert.Equal(t, 1, calls)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := New()
	s.SetFloat("/a", 1)

	snap := s.Snapshot()
	snap["/b"] = Float(2)

	_, ok := s.Get("/b")
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	assert.False(t, Float(0.5).IsString())
	assert.Equal(t, "0.5", Float(0.5).AsString())
	assert.True(t, String("1.5").IsString())
	assert.InDelta(t, 1.5, String("1.5").AsFloat(), 1e-9)
	assert.Zero(t, String("10.0.0.1").AsFloat())
	assert.Equal(t, "10.0.0.1", String("10.0.0.1").String())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/source/12/y", SourcePath(12, AxisY))
	assert.Equal(t, "/module/3", ModulePath(3))
	assert.True(t, IsModulePath("/module/3"))
	assert.False(t, IsModulePath("/source/3/x"))
}
