package presence

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"dmrelay/internal/model"
)

type fakeHandle struct {
	id string
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{id: uuid.NewString()}
}

func (f *fakeHandle) ID() string                      { return f.id }
func (f *fakeHandle) Push(_ model.OutboundEvent) bool { return true }

func TestRegistry_Bind_Lookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	h := newFakeHandle()

	// Given nobody is online
	req.Empty(registry.Snapshot())
	_, ok := registry.Lookup(5)
	req.False(ok)

	// When identity 5 binds a handle
	registry.Bind(5, h)

	// Then the handle is found and 5 is online
	got, ok := registry.Lookup(5)
	req.True(ok)
	req.Equal(h, got)
	req.True(registry.IsOnline(5))
	req.Equal([]int64{5}, registry.Snapshot())
	req.Equal(1, registry.Len())
}

func TestRegistry_Bind_LastWriterWins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := newFakeHandle()
	second := newFakeHandle()

	// When the same identity logs in from two handles
	registry.Bind(5, first)
	registry.Bind(5, second)

	// Then the most recent handle is the one resolved
	got, ok := registry.Lookup(5)
	req.True(ok)
	req.Equal(second, got)
	req.Equal(1, registry.Len())

	// And unbinding the superseded handle leaves the newer binding alone
	req.Empty(registry.Unbind(first))
	got, ok = registry.Lookup(5)
	req.True(ok)
	req.Equal(second, got)
}

func TestRegistry_Unbind(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	h5 := newFakeHandle()
	h9 := newFakeHandle()
	registry.Bind(5, h5)
	registry.Bind(9, h9)

	// When handle of 5 disconnects
	removed := registry.Unbind(h5)

	// Then only 5 leaves
	req.Equal([]int64{5}, removed)
	req.Equal([]int64{9}, registry.Snapshot())
	_, ok := registry.Lookup(5)
	req.False(ok)
}

func TestRegistry_Unbind_NeverBound(t *testing.T) {
	registry := NewRegistry()
	registry.Bind(9, newFakeHandle())

	removed := registry.Unbind(newFakeHandle())

	require.Empty(t, removed)
	require.Equal(t, []int64{9}, registry.Snapshot())
}

func TestRegistry_Unbind_HandleReboundToSecondIdentity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	h := newFakeHandle()

	// Given one handle logged in as 5 then as 7
	registry.Bind(5, h)
	registry.Bind(7, h)
	req.Equal([]int64{5, 7}, registry.Snapshot())

	// When it disconnects every entry pointing at it goes away
	req.Equal([]int64{5, 7}, registry.Unbind(h))
	req.Empty(registry.Snapshot())
}

func TestRegistry_Snapshot_Sorted(t *testing.T) {
	registry := NewRegistry()
	for _, id := range []int64{42, 3, 17} {
		registry.Bind(id, newFakeHandle())
	}

	require.Equal(t, []int64{3, 17, 42}, registry.Snapshot())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			h := newFakeHandle()
			registry.Bind(id, h)
			registry.Lookup(id)
			registry.Snapshot()
			if id%2 == 0 {
				registry.Unbind(h)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 25, registry.Len())
}
