// Package domain contains entity without logic, just meta-data
package domain

import "github.com/google/uuid"

// ConnID identifies a single client connection for its whole lifetime.
// Two tabs of the same browser get two different IDs.
type ConnID string

// NewConnID is a tiny helper to avoid ad-hoc uuid calls in adapters.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}
