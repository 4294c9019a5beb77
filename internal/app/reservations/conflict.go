package reservations

import (
	"context"
	"fmt"

	"studyreserve/internal/domain/reservation"
	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
)

// hasConflict reports whether candidate overlaps any CONFIRMED reservation
// for the space and date. Half-open semantics: touching endpoints are not a
// conflict. excludeID skips a reservation so an extension never conflicts
// with itself.
func (s *Service) hasConflict(ctx context.Context, spaceID spaces.SpaceID, date civil.Date, candidate civil.Interval, excludeID reservation.ReservationID) (bool, error) {
	existing, err := s.store.ConfirmedBySpaceAndDate(ctx, spaceID, date)
	if err != nil {
		return false, fmt.Errorf("fetch confirmed reservations: %w", err)
	}
	for _, r := range existing {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if candidate.Overlaps(r.Interval) {
			return true, nil
		}
	}
	return false, nil
}
