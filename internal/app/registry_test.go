package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dkeye/gamegate/internal/domain"
)

func TestRegistry_AddRemove(t *testing.T) {
	r := NewRegistry()
	a, b := newFakeConn("a"), newFakeConn("b")
	r.Add(a)
	r.Add(b)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, r.Remove("a"))
	assert.False(t, r.Remove("a"), "second remove is a no-op")
	assert.Equal(t, 1, r.Len())
	_, ok = r.Get("a")
	assert.False(t, ok)
}

func TestRegistry_AddTwiceKeepsOneEntry(t *testing.T) {
	r := NewRegistry()
	c := newFakeConn("a")
	r.Add(c)
	r.Add(c)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_BroadcastPing(t *testing.T) {
	r := NewRegistry()
	conns := []*fakeConn{newFakeConn("a"), newFakeConn("b"), newFakeConn("c")}
	for _, c := range conns {
		r.Add(c)
	}

	res := r.Broadcast(Signal{Kind: SignalPing})
	assert.Equal(t, 3, res.Sent)
	assert.Empty(t, res.Failed)
	for _, c := range conns {
		assert.Equal(t, 1, c.Pings())
	}
}

func TestRegistry_BroadcastSkipsFailingConnection(t *testing.T) {
	r := NewRegistry()
	good1, bad, good2 := newFakeConn("a"), newFakeConn("b"), newFakeConn("c")
	bad.sendErr = errSendFailed
	r.Add(good1)
	r.Add(bad)
	r.Add(good2)

	res := r.Broadcast(Signal{Kind: SignalFrame, Data: []byte("hi")})
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, []domain.ConnID{"b"}, res.Failed)
	assert.Len(t, good1.Frames(), 1)
	assert.Len(t, good2.Frames(), 1)

	// failure does not touch membership
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_ConcurrentOpenCloseAndBroadcast(t *testing.T) {
	r := NewRegistry()
	const opens, closes = 200, 120

	var wg sync.WaitGroup
	for i := range opens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(newFakeConn(fmt.Sprintf("c%d", i)))
		}()
	}
	stop := make(chan struct{})
	var bwg sync.WaitGroup
	bwg.Add(1)
	go func() {
		defer bwg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				r.Broadcast(Signal{Kind: SignalPing})
			}
		}
	}()
	wg.Wait()

	for i := range closes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Remove(domain.ConnID(fmt.Sprintf("c%d", i)))
		}()
	}
	wg.Wait()
	close(stop)
	bwg.Wait()

	assert.Equal(t, opens-closes, r.Len())
}

func TestRegistry_SizeIsOpensMinusCloses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		ops := rapid.SliceOf(rapid.Bool()).Draw(t, "ops")

		var open []domain.ConnID
		next, opened, closed := 0, 0, 0
		for _, isOpen := range ops {
			if isOpen || len(open) == 0 {
				c := newFakeConn(fmt.Sprintf("c%d", next))
				next++
				r.Add(c)
				open = append(open, c.ID())
				opened++
				continue
			}
			i := rapid.IntRange(0, len(open)-1).Draw(t, "victim")
			r.Remove(open[i])
			open = append(open[:i], open[i+1:]...)
			closed++
		}
		if r.Len() != opened-closed {
			t.Fatalf("registry size %d, want %d", r.Len(), opened-closed)
		}
	})
}
