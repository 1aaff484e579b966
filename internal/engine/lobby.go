// Package engine is a small in-process game engine used by the server
// binary and the tests. It is not a rules engine.
//
// core.Controller has no way to leave a game. A player is removed only
// when one of the views added for it reports departure through an optional
// Departed() (domain.ConnID, bool) method; the removal happens on the next
// Wake. Views without that method, and their players, stay for the life
// of the process.
package engine

import (
	"fmt"

	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Model describes one game instance to run.
type Model struct {
	Name    string
	Options int
}

// Lobby is a core.Directory over a fixed, ordered set of games.
type Lobby struct {
	order   []string
	games   map[string]*Game
	workers int
}

var _ core.Directory = (*Lobby)(nil)

// NewLobby starts one game per model. Duplicate names keep the first model.
func NewLobby(models []Model, workers int) *Lobby {
	if workers < 1 {
		workers = 1
	}
	l := &Lobby{games: make(map[string]*Game, len(models)), workers: workers}
	for _, m := range models {
		if _, ok := l.games[m.Name]; ok {
			continue
		}
		l.order = append(l.order, m.Name)
		l.games[m.Name] = NewGame(m.Name, m.Options)
	}
	return l
}

func (l *Lobby) AvailableModels() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

func (l *Lobby) JoinGame(id domain.ConnID, name string) (core.Controller, error) {
	g, ok := l.games[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrGameNotFound, name)
	}
	g.join(id)
	return g, nil
}

// Wake steps every game and refreshes the views of those that changed.
func (l *Lobby) Wake() {
	p := pool.New().WithMaxGoroutines(l.workers)
	refreshed := 0
	for _, name := range l.order {
		for _, v := range l.games[name].step() {
			p.Go(v.Refresh)
			refreshed++
		}
	}
	p.Wait()
	log.Debug().Str("module", "engine.lobby").Int("refreshed", refreshed).Msg("wake")
}
