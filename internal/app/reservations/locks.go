package reservations

import (
	"sync"

	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
)

// lockRegistry hands out one mutex per (space, date) so the conflict check
// and the store write of a booking run as a single critical section. Writers
// on different spaces or dates never contend.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the (space, date) scope is held and returns the
// release func.
func (g *lockRegistry) acquire(spaceID spaces.SpaceID, date civil.Date) func() {
	key := string(spaceID) + "@" + date.String()
	g.mu.Lock()
	m, ok := g.locks[key]
	if !ok {
		m = &sync.Mutex{}
		g.locks[key] = m
	}
	g.mu.Unlock()
	m.Lock()
	return m.Unlock
}
