package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
)

type fakeConn struct {
	id domain.ConnID

	mu      sync.Mutex
	frames  []core.Frame
	pings   int
	sendErr error
	closed  bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: domain.ConnID(id)}
}

func (c *fakeConn) ID() domain.ConnID { return c.id }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) TryPing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.pings++
	return nil
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) Frames() []core.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *fakeConn) Pings() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pings
}

// fakeController accepts any non-negative choice and refreshes all views on notify.
type fakeController struct {
	mu       sync.Mutex
	views    []core.View
	selected map[domain.ConnID]int
	reject   bool
	state    func(id domain.ConnID) any
}

func newFakeController() *fakeController {
	return &fakeController{selected: make(map[domain.ConnID]int)}
}

func (c *fakeController) SetSelected(id domain.ConnID, choice int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reject || choice < 0 {
		return false
	}
	c.selected[id] = choice
	return true
}

func (c *fakeController) AddView(v core.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = append(c.views, v)
}

func (c *fakeController) GetCurrentState(id domain.ConnID) any {
	if c.state != nil {
		return c.state(id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]any{"conn": string(id), "selected": c.selected[id]}
}

func (c *fakeController) notify() {
	c.mu.Lock()
	views := append([]core.View(nil), c.views...)
	c.mu.Unlock()
	for _, v := range views {
		v.Refresh()
	}
}

func (c *fakeController) viewCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.views)
}

type fakeDirectory struct {
	mu       sync.Mutex
	models   []string
	games    map[string]*fakeController
	joinErr  error
	joins    int
	wakes    int
	onWake   func()
	panicked bool
}

func newFakeDirectory(models ...string) *fakeDirectory {
	d := &fakeDirectory{models: models, games: make(map[string]*fakeController)}
	for _, m := range models {
		d.games[m] = newFakeController()
	}
	return d
}

func (d *fakeDirectory) AvailableModels() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.panicked {
		panic("directory exploded")
	}
	return append([]string(nil), d.models...)
}

func (d *fakeDirectory) JoinGame(_ domain.ConnID, game string) (core.Controller, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.joins++
	if d.joinErr != nil {
		return nil, d.joinErr
	}
	g, ok := d.games[game]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrGameNotFound, game)
	}
	return g, nil
}

func (d *fakeDirectory) Wake() {
	d.mu.Lock()
	d.wakes++
	onWake := d.onWake
	d.mu.Unlock()
	if onWake != nil {
		onWake()
	}
}

func (d *fakeDirectory) Joins() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.joins
}

func (d *fakeDirectory) Wakes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wakes
}

var errSendFailed = errors.New("send failed")
