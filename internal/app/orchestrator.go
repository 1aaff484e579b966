package app

import (
	"github.com/dkeye/gamegate/internal/core"
	"github.com/dkeye/gamegate/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator is built once at startup and handed to the transport.
// It is the only place the registry, bindings and directory meet.
type Orchestrator struct {
	Registry   *Registry
	Bindings   *Bindings
	Directory  core.Directory
	Dispatcher *Dispatcher
}

func NewOrchestrator(dir core.Directory) *Orchestrator {
	bindings := NewBindings()
	return &Orchestrator{
		Registry:   NewRegistry(),
		Bindings:   bindings,
		Directory:  dir,
		Dispatcher: NewDispatcher(dir, bindings),
	}
}

func (o *Orchestrator) OnConnect(conn core.Conn) {
	o.Registry.Add(conn)
}

// OnMessage handles one command and returns the reply for the caller to send.
func (o *Orchestrator) OnMessage(conn core.Conn, data []byte) domain.Reply {
	return o.Dispatcher.Handle(data, conn)
}

// OnDisconnect forgets the connection and stops pushes to it.
// core.Controller has no departure hook; a released binding's view reports
// Departed, and the wake lets the directory notice it.
func (o *Orchestrator) OnDisconnect(id domain.ConnID) {
	removed := o.Registry.Remove(id)
	released := o.Bindings.Release(id)
	log.Info().Str("module", "app.orchestrator").Str("conn", string(id)).Bool("registered", removed).Bool("bound", released).Msg("disconnected")
	if released {
		o.Directory.Wake()
	}
}
