package app

import (
	"sync"
	"sync/atomic"

	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/rs/zerolog/log"
)

// NeverDelivered is the state version of a binding that has not pushed yet.
const NeverDelivered int64 = -1

// Binding ties a connection to the controller it joined.
// Controller is fixed at creation.
type Binding struct {
	conn       core.Conn
	controller core.Controller
	version    atomic.Int64
	view       *StateView
}

func (b *Binding) Conn() core.Conn             { return b.conn }
func (b *Binding) Controller() core.Controller { return b.controller }
func (b *Binding) StateVersion() int64         { return b.version.Load() }

// View is the push callback to register with the controller.
func (b *Binding) View() *StateView { return b.view }

// Bindings is the connection → controller table. Each key is written once.
type Bindings struct {
	mu       sync.RWMutex
	bindings map[domain.ConnID]*Binding
}

func NewBindings() *Bindings {
	return &Bindings{bindings: make(map[domain.ConnID]*Binding)}
}

func (t *Bindings) IsBound(id domain.ConnID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.bindings[id]
	return ok
}

func (t *Bindings) Get(id domain.ConnID) (core.Controller, bool) {
	b, ok := t.lookup(id)
	if !ok {
		return nil, false
	}
	return b.controller, true
}

func (t *Bindings) lookup(id domain.ConnID) (*Binding, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.bindings[id]
	return b, ok
}

// Create binds conn to ctrl. It fails with ErrDuplicateJoin when conn is
// already bound and leaves the existing binding untouched.
func (t *Bindings) Create(conn core.Conn, ctrl core.Controller) (*Binding, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.bindings[conn.ID()]; ok {
		return nil, ErrDuplicateJoin
	}
	b := &Binding{conn: conn, controller: ctrl}
	b.version.Store(NeverDelivered)
	b.view = newStateView(b)
	t.bindings[conn.ID()] = b
	log.Info().Str("module", "app.bindings").Str("conn", string(conn.ID())).Msg("binding created")
	return b, nil
}

// Release drops the binding of id and detaches its view.
func (t *Bindings) Release(id domain.ConnID) bool {
	t.mu.Lock()
	b, ok := t.bindings[id]
	delete(t.bindings, id)
	t.mu.Unlock()
	if !ok {
		return false
	}
	b.view.Detach()
	log.Info().Str("module", "app.bindings").Str("conn", string(id)).Msg("binding released")
	return true
}

func (t *Bindings) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.bindings)
}
