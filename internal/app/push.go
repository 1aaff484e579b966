package app

import (
	"encoding/json"
	"sync/atomic"

	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// StateView is the push callback of one binding. It implements core.View.
// Refresh never blocks and never lets a failure reach the controller.
type StateView struct {
	conn       core.Conn
	controller core.Controller
	version    *atomic.Int64
	detached   atomic.Bool
}

var _ core.View = (*StateView)(nil)

func newStateView(b *Binding) *StateView {
	return &StateView{conn: b.conn, controller: b.controller, version: &b.version}
}

// Detach turns later Refresh calls into no-ops. Controllers have no way to
// drop a view, so this is how a closed connection stops receiving pushes.
func (v *StateView) Detach() { v.detached.Store(true) }

// Departed reports the view's connection and whether it is gone, so an
// engine that checks for it can drop the view and the player.
func (v *StateView) Departed() (domain.ConnID, bool) {
	return v.conn.ID(), v.detached.Load() || v.conn.Closed()
}

func (v *StateView) Refresh() {
	if v.detached.Load() || v.conn.Closed() {
		return
	}
	var pc panics.Catcher
	pc.Try(v.push)
	if r := pc.Recovered(); r != nil {
		log.Error().Str("module", "app.push").Str("conn", string(v.conn.ID())).Str("panic", r.String()).Msg("push recovered")
	}
}

func (v *StateView) push() {
	id := v.conn.ID()
	msg := domain.StatePush{
		Type:    domain.PushTypeState,
		Version: v.version.Add(1),
		State:   v.controller.GetCurrentState(id),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.push").Str("conn", string(id)).Msg("push marshal")
		return
	}
	if err := v.conn.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "app.push").Str("conn", string(id)).Int64("version", msg.Version).Msg("push dropped")
		return
	}
	log.Debug().Str("module", "app.push").Str("conn", string(id)).Int64("version", msg.Version).Msg("state pushed")
}
