// Package memory holds in-memory implementations of the engine's storage
// interfaces, used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"studyreserve/internal/domain/reservation"
	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/shared/events"
	"studyreserve/internal/domain/spaces"
)

// ReservationStore keeps reservations in a map guarded by a RWMutex. Save
// enforces the same optimistic version check as the mongo store so the
// WriteConflict path behaves identically across backends.
type ReservationStore struct {
	mu    sync.RWMutex
	items map[reservation.ReservationID]*reservation.Reservation
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{items: make(map[reservation.ReservationID]*reservation.Reservation)}
}

func (s *ReservationStore) ByID(ctx context.Context, id reservation.ReservationID) (*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return cloneReservation(r), nil
}

func (s *ReservationStore) ConfirmedBySpaceAndDate(ctx context.Context, spaceID spaces.SpaceID, date civil.Date) ([]*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*reservation.Reservation
	for _, r := range s.items {
		if r.SpaceID == spaceID && r.Date == date && r.Status == reservation.StatusConfirmed {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (s *ReservationStore) ByUser(ctx context.Context, userID string) ([]*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*reservation.Reservation
	for _, r := range s.items {
		if r.UserID == userID {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (s *ReservationStore) BySpace(ctx context.Context, spaceID spaces.SpaceID) ([]*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*reservation.Reservation
	for _, r := range s.items {
		if r.SpaceID == spaceID {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

// Save inserts or updates by id. The caller's version must match the stored
// one; on success the caller's copy is bumped to the new version.
func (s *ReservationStore) Save(ctx context.Context, r *reservation.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[r.ID]
	if ok {
		if existing.Version != r.Version {
			return reservation.ErrWriteConflict
		}
	} else if r.Version != 0 {
		return reservation.ErrWriteConflict
	}
	stored := cloneReservation(r)
	stored.Version = r.Version + 1
	s.items[r.ID] = stored
	r.Version = stored.Version
	return nil
}

// cloneReservation detaches the stored record from the caller's copy. The
// store owns its records; handed-out values must not alias them.
func cloneReservation(r *reservation.Reservation) *reservation.Reservation {
	cp := *r
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}
