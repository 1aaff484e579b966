package core

import (
	"errors"

	"github.com/dkeye/gamegate/internal/domain"
)

// ErrGameNotFound is wrapped by Directory.JoinGame for unknown or unavailable games.
var ErrGameNotFound = errors.New("game not found")

// View is notified by a Controller whenever its state changes.
// Refresh may be called from any goroutine.
type View interface {
	Refresh()
}

// Controller is the interaction surface of one running game instance.
type Controller interface {
	SetSelected(id domain.ConnID, choice int) bool
	AddView(v View)
	// GetCurrentState returns an opaque, JSON-serializable snapshot as seen by id.
	GetCurrentState(id domain.ConnID) any
}

// Directory enumerates game instances and admits connections into them.
type Directory interface {
	AvailableModels() []string
	JoinGame(id domain.ConnID, game string) (Controller, error)
	// Wake advances the engine's scheduling pass.
	Wake()
}
