package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProber_ProbeReachesEveryoneDespiteFailure(t *testing.T) {
	r := NewRegistry()
	a, b, c := newFakeConn("a"), newFakeConn("b"), newFakeConn("c")
	b.sendErr = errSendFailed
	r.Add(a)
	r.Add(b)
	r.Add(c)

	p := &Prober{Registry: r, Period: time.Hour}
	res := p.Probe()

	assert.Equal(t, 2, res.Sent)
	assert.Len(t, res.Failed, 1)
	assert.Equal(t, 1, a.Pings())
	assert.Equal(t, 1, c.Pings())
	assert.Empty(t, a.Frames(), "ping carries no payload frame")
}

func TestProber_RunTicksUntilCancelled(t *testing.T) {
	r := NewRegistry()
	a := newFakeConn("a")
	r.Add(a)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	p := &Prober{Registry: r, Period: 5 * time.Millisecond}
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return a.Pings() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("prober did not stop")
	}
}
