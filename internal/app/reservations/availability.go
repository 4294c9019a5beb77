package reservations

import (
	"context"
	"fmt"

	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
)

// Window is the bookable part of a day and the display slot width.
type Window struct {
	Open        civil.TimeOfDay
	Close       civil.TimeOfDay
	SlotMinutes int
}

// DefaultWindow is 08:00-20:00 in 30-minute slots.
func DefaultWindow() Window {
	return Window{Open: 8 * 60, Close: 20 * 60, SlotMinutes: 30}
}

func (w Window) Validate() error {
	if w.SlotMinutes <= 0 {
		return fmt.Errorf("window: slot width must be positive")
	}
	if !w.Close.After(w.Open) {
		return fmt.Errorf("window: close must be after open")
	}
	return nil
}

// TimeSlot is a derived availability cell. It is recomputed on every query
// and never persisted.
type TimeSlot struct {
	Start     civil.TimeOfDay
	End       civil.TimeOfDay
	Available bool
}

// Availability returns the slot grid for a space on a date, chronological
// and gap-free across the whole window. A slot is unavailable iff it
// overlaps a CONFIRMED reservation.
func (s *Service) Availability(ctx context.Context, spaceID spaces.SpaceID, date civil.Date) ([]TimeSlot, error) {
	exists, err := s.directory.Exists(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("resolve space: %w", err)
	}
	if !exists {
		return nil, spaces.ErrSpaceNotFound
	}

	confirmed, err := s.store.ConfirmedBySpaceAndDate(ctx, spaceID, date)
	if err != nil {
		return nil, fmt.Errorf("fetch confirmed reservations: %w", err)
	}

	slots := s.window.slots()
	for i := range slots {
		cell := civil.Interval{Start: slots[i].Start, End: slots[i].End}
		for _, r := range confirmed {
			if cell.Overlaps(r.Interval) {
				slots[i].Available = false
				break
			}
		}
	}
	return slots, nil
}

func (w Window) slots() []TimeSlot {
	var out []TimeSlot
	for start := w.Open; start.Before(w.Close); start = start.AddMinutes(w.SlotMinutes) {
		end := start.AddMinutes(w.SlotMinutes)
		if end.After(w.Close) {
			end = w.Close
		}
		out = append(out, TimeSlot{Start: start, End: end, Available: true})
	}
	return out
}
