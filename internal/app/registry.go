package app

import (
	"sync"

	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/rs/zerolog/log"
)

type SignalKind int

const (
	SignalPing SignalKind = iota
	SignalFrame
)

// Signal is what Broadcast fans out. Data is only used by SignalFrame.
type Signal struct {
	Kind SignalKind
	Data core.Frame
}

// BroadcastResult reports delivery stats.
type BroadcastResult struct {
	Sent   int
	Failed []domain.ConnID
}

// Registry tracks the currently open connections.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]core.Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]core.Conn)}
}

// Add registers conn. Adding the same ID twice keeps a single entry.
func (r *Registry) Add(conn core.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
	log.Info().Str("module", "app.registry").Str("conn", string(conn.ID())).Int("total", len(r.conns)).Msg("connection added")
}

// Remove reports whether id was registered.
func (r *Registry) Remove(id domain.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Int("total", len(r.conns)).Msg("connection removed")
	return true
}

func (r *Registry) Get(id domain.ConnID) (core.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) snapshot() []core.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Broadcast sends sig to every registered connection. A failing
// connection is logged and skipped; the rest still get the signal.
// Sends happen outside the lock so Add/Remove are never held up.
func (r *Registry) Broadcast(sig Signal) BroadcastResult {
	res := BroadcastResult{}
	for _, c := range r.snapshot() {
		var err error
		switch sig.Kind {
		case SignalPing:
			err = c.TryPing()
		default:
			err = c.TrySend(sig.Data)
		}
		if err != nil {
			log.Warn().Err(err).Str("module", "app.registry").Str("conn", string(c.ID())).Msg("broadcast send failed")
			res.Failed = append(res.Failed, c.ID())
			continue
		}
		res.Sent++
	}
	log.Debug().Str("module", "app.registry").Int("sent_to", res.Sent).Int("failed", len(res.Failed)).Msg("broadcast result")
	return res
}
