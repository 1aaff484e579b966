package core

import (
	"errors"

	"github.com/dkeye/gamegate/internal/domain"
)

// Frame is a raw text payload.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Conn abstracts one client's messaging transport.
// Owned by the adapter; the core never closes it.
// TrySend and TryPing must not block and are safe for concurrent use.
type Conn interface {
	ID() domain.ConnID
	TrySend(Frame) error
	TryPing() error
	Closed() bool
}
