// Package reservations implements the reservation lifecycle: conflict
// checking, availability grids and the create/cancel/extend state machine.
package reservations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"studyreserve/internal/app/outbox"
	"studyreserve/internal/domain/reservation"
	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
)

// Service orchestrates reservation mutations. Every lifecycle operation
// takes the acting user id explicitly; nothing is read from ambient state.
type Service struct {
	store     reservation.Store
	directory spaces.Directory
	locks     *lockRegistry
	clock     Clock
	window    Window
	outbox    outbox.Outbox
	encoder   outbox.EventEncoder
	logger    *slog.Logger
	newID     func() reservation.ReservationID
}

type Config struct {
	Store     reservation.Store
	Directory spaces.Directory
	Clock     Clock
	Window    Window
	Outbox    outbox.Outbox
	Logger    *slog.Logger
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("reservations: store is required")
	}
	if cfg.Directory == nil {
		return nil, fmt.Errorf("reservations: space directory is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Window == (Window{}) {
		cfg.Window = DefaultWindow()
	}
	if err := cfg.Window.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		store:     cfg.Store,
		directory: cfg.Directory,
		locks:     newLockRegistry(),
		clock:     cfg.Clock,
		window:    cfg.Window,
		outbox:    cfg.Outbox,
		encoder:   outbox.JSONEventEncoder{},
		logger:    cfg.Logger,
		newID:     func() reservation.ReservationID { return reservation.ReservationID(uuid.NewString()) },
	}, nil
}

// Create books [start, end) on a space for the acting user. The conflict
// check and the insert run under the per-(space, date) lock so two racing
// creates cannot both pass the check.
func (s *Service) Create(ctx context.Context, userID string, spaceID spaces.SpaceID, date civil.Date, start, end civil.TimeOfDay) (*reservation.Reservation, error) {
	exists, err := s.directory.Exists(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("resolve space: %w", err)
	}
	if !exists {
		return nil, spaces.ErrSpaceNotFound
	}
	interval, err := civil.NewInterval(start, end)
	if err != nil {
		return nil, reservation.ErrInvalidInterval
	}

	release := s.locks.acquire(spaceID, date)
	defer release()

	conflict, err := s.hasConflict(ctx, spaceID, date, interval, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, reservation.ErrSlotUnavailable
	}

	r, err := reservation.New(reservation.CreateParams{
		ID:        s.newID(),
		UserID:    userID,
		SpaceID:   spaceID,
		Date:      date,
		Start:     start,
		End:       end,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}
	s.publishEvents(ctx, r)

	s.logger.Info("reservation created",
		"reservation_id", r.ID, "space_id", spaceID, "user_id", userID,
		"date", date.String(), "interval", interval.String())
	return r, nil
}

// Cancel flips a CONFIRMED reservation owned by the acting user to
// CANCELLED. The record is re-read under the (space, date) lock before the
// write.
func (s *Service) Cancel(ctx context.Context, id reservation.ReservationID, actingUserID string) (*reservation.Reservation, error) {
	r, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(r.SpaceID, r.Date)
	defer release()

	r, err = s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.OwnedBy(actingUserID) {
		return nil, reservation.ErrForbidden
	}
	if err := r.Cancel(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}
	s.publishEvents(ctx, r)

	s.logger.Info("reservation cancelled", "reservation_id", r.ID, "user_id", actingUserID)
	return r, nil
}

// Extend moves the end time strictly later. Only the delta window
// [currentEnd, newEnd) is checked for conflicts; the already-held portion is
// free by definition, and the reservation's own record is excluded.
func (s *Service) Extend(ctx context.Context, id reservation.ReservationID, actingUserID string, newEnd civil.TimeOfDay) (*reservation.Reservation, error) {
	r, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(r.SpaceID, r.Date)
	defer release()

	r, err = s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.OwnedBy(actingUserID) {
		return nil, reservation.ErrForbidden
	}
	if r.Status != reservation.StatusConfirmed {
		return nil, reservation.ErrInvalidState
	}
	if !newEnd.After(r.Interval.End) {
		return nil, reservation.ErrInvalidInterval
	}

	delta := civil.Interval{Start: r.Interval.End, End: newEnd}
	conflict, err := s.hasConflict(ctx, r.SpaceID, r.Date, delta, r.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, reservation.ErrSlotUnavailable
	}

	if err := r.ExtendTo(newEnd, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}
	s.publishEvents(ctx, r)

	s.logger.Info("reservation extended",
		"reservation_id", r.ID, "user_id", actingUserID, "new_end", newEnd.String())
	return r, nil
}

// ListForUser returns all of a user's reservations, any status, ordered by
// date then start time.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*reservation.Reservation, error) {
	list, err := s.store.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortChronological(list)
	return list, nil
}

// ListUpcomingForUser returns CONFIRMED reservations whose (date, end) is
// strictly after the clock's current instant.
func (s *Service) ListUpcomingForUser(ctx context.Context, userID string) ([]*reservation.Reservation, error) {
	list, err := s.store.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	today := civil.DateOf(now)
	timeNow := civil.TimeOfDayOf(now)

	upcoming := list[:0]
	for _, r := range list {
		if r.Status != reservation.StatusConfirmed {
			continue
		}
		if r.Date.After(today) || (r.Date == today && r.Interval.End.After(timeNow)) {
			upcoming = append(upcoming, r)
		}
	}
	sortChronological(upcoming)
	return upcoming, nil
}

// ListForSpace returns all reservations on a space, any status.
func (s *Service) ListForSpace(ctx context.Context, spaceID spaces.SpaceID) ([]*reservation.Reservation, error) {
	list, err := s.store.BySpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	sortChronological(list)
	return list, nil
}

func sortChronological(list []*reservation.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].Date.Compare(list[j].Date); c != 0 {
			return c < 0
		}
		return list[i].Interval.Start < list[j].Interval.Start
	})
}

// publishEvents queues the aggregate's pending events. The store write is
// the commit point; a publication failure is logged, not surfaced.
func (s *Service) publishEvents(ctx context.Context, r *reservation.Reservation) {
	if s.outbox == nil {
		r.ClearEvents()
		return
	}
	if err := outbox.RecordDomainEvents(ctx, s.outbox, s.encoder, r.PendingEvents()); err != nil {
		s.logger.Error("queue reservation events failed", "reservation_id", r.ID, "error", err)
	}
	r.ClearEvents()
}
