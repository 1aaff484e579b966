package engine

import (
	"slices"
	"sync"

	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/rs/zerolog/log"
)

// State is what one player sees of a game.
type State struct {
	Game    string `json:"game"`
	Round   int    `json:"round"`
	Seat    int    `json:"seat"`
	Players int    `json:"players"`
	Options int    `json:"options"`
	// Selected is this player's pending choice for the current round.
	Selected *int `json:"selected,omitempty"`
	Waiting  int  `json:"waiting"`
	// LastRound holds the previous round's choices by seat, -1 for none.
	LastRound []int `json:"last_round,omitempty"`
}

// Game is a single running instance. Every player picks one of Options
// per round; the round closes on the first Wake after all have picked.
type Game struct {
	name    string
	options int

	mu        sync.Mutex
	round     int
	players   []domain.ConnID
	selected  map[domain.ConnID]int
	lastRound []int
	views     []core.View
	dirty     bool
}

var _ core.Controller = (*Game)(nil)

// departable is implemented by views that can tell when their player is gone.
// Such a view is dropped on the next step together with its player.
type departable interface {
	Departed() (domain.ConnID, bool)
}

func NewGame(name string, options int) *Game {
	return &Game{
		name:     name,
		options:  options,
		selected: make(map[domain.ConnID]int),
	}
}

func (g *Game) Name() string { return g.name }

func (g *Game) join(id domain.ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if slices.Contains(g.players, id) {
		return
	}
	g.players = append(g.players, id)
	g.dirty = true
	log.Info().Str("module", "engine.game").Str("game", g.name).Str("conn", string(id)).Int("players", len(g.players)).Msg("player joined")
}

// SetSelected rejects strangers, out-of-range choices and second picks in a round.
func (g *Game) SetSelected(id domain.ConnID, choice int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !slices.Contains(g.players, id) {
		return false
	}
	if choice < 0 || choice >= g.options {
		return false
	}
	if _, ok := g.selected[id]; ok {
		return false
	}
	g.selected[id] = choice
	g.dirty = true
	return true
}

func (g *Game) AddView(v core.View) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.views = append(g.views, v)
}

func (g *Game) GetCurrentState(id domain.ConnID) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := State{
		Game:      g.name,
		Round:     g.round,
		Seat:      slices.Index(g.players, id),
		Players:   len(g.players),
		Options:   g.options,
		Waiting:   len(g.players) - len(g.selected),
		LastRound: slices.Clone(g.lastRound),
	}
	if c, ok := g.selected[id]; ok {
		st.Selected = &c
	}
	return st
}

// step closes the round when everyone picked and returns the views to
// refresh, or nil when nothing changed since the last step.
func (g *Game) step() []core.View {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneDeparted()
	if len(g.players) > 0 && len(g.selected) == len(g.players) {
		g.lastRound = make([]int, len(g.players))
		for seat, id := range g.players {
			g.lastRound[seat] = g.selected[id]
		}
		clear(g.selected)
		g.round++
		g.dirty = true
		log.Info().Str("module", "engine.game").Str("game", g.name).Int("round", g.round).Msg("round closed")
	}
	if !g.dirty {
		return nil
	}
	g.dirty = false
	return slices.Clone(g.views)
}

// pruneDeparted must be called with g.mu held.
func (g *Game) pruneDeparted() {
	g.views = slices.DeleteFunc(g.views, func(v core.View) bool {
		d, ok := v.(departable)
		if !ok {
			return false
		}
		id, gone := d.Departed()
		if !gone {
			return false
		}
		if i := slices.Index(g.players, id); i >= 0 {
			g.players = slices.Delete(g.players, i, i+1)
			delete(g.selected, id)
			log.Info().Str("module", "engine.game").Str("game", g.name).Str("conn", string(id)).Int("players", len(g.players)).Msg("player left")
		}
		g.dirty = true
		return true
	})
}
