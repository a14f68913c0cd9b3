// Package lifecycle holds shutdown timeouts and the mount-lifetime guard
// used to drop responses that arrive after their consumer went away.
package lifecycle

import (
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds graceful shutdown of local servers.
const DefaultTimeout = 5 * time.Second

// Generation counts mounts of a component. A request captures the current
// Ticket when it is dispatched; its response is applied only if the ticket
// is still current. Unmount (or a new Mount) invalidates outstanding tickets.
type Generation struct {
	current atomic.Uint64
	mounted atomic.Bool
}

// Ticket identifies one mount lifetime.
type Ticket uint64

// Mount starts a new lifetime and returns its ticket.
func (g *Generation) Mount() Ticket {
	t := Ticket(g.current.Add(1))
	g.mounted.Store(true)

	return t
}

// Unmount ends the current lifetime.
func (g *Generation) Unmount() {
	g.current.Add(1)
	g.mounted.Store(false)
}

// Ticket returns the ticket of the current lifetime.
func (g *Generation) Ticket() Ticket {
	return Ticket(g.current.Load())
}

// Valid reports whether t belongs to the live mount.
func (g *Generation) Valid(t Ticket) bool {
	return g.mounted.Load() && Ticket(g.current.Load()) == t
}
