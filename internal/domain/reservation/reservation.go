package reservation

import (
	"context"
	"errors"
	"time"

	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/shared/events"
	"studyreserve/internal/domain/spaces"
)

var (
	ErrNotFound         = errors.New("reservation: not found")
	ErrForbidden        = errors.New("reservation: not owned by acting user")
	ErrInvalidInterval  = errors.New("reservation: invalid time interval")
	ErrSlotUnavailable  = errors.New("reservation: time slot already booked")
	ErrAlreadyCancelled = errors.New("reservation: already cancelled")
	ErrInvalidState     = errors.New("reservation: operation not valid for current status")
	ErrWriteConflict    = errors.New("reservation: concurrent update, retry")
)

type ReservationID string

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Reservation is a booked half-open interval on one space for one date.
// Records are never deleted; cancellation is a terminal status flip.
type Reservation struct {
	ID        ReservationID
	UserID    string
	SpaceID   spaces.SpaceID
	Date      civil.Date
	Interval  civil.Interval
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// Store is the sole source of truth for overlap checks. Save performs an
// optimistic version check and returns ErrWriteConflict on a stale write.
type Store interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	ConfirmedBySpaceAndDate(ctx context.Context, spaceID spaces.SpaceID, date civil.Date) ([]*Reservation, error)
	ByUser(ctx context.Context, userID string) ([]*Reservation, error)
	BySpace(ctx context.Context, spaceID spaces.SpaceID) ([]*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
}

type CreateParams struct {
	ID        ReservationID
	UserID    string
	SpaceID   spaces.SpaceID
	Date      civil.Date
	Start     civil.TimeOfDay
	End       civil.TimeOfDay
	CreatedAt time.Time
}

// New builds a CONFIRMED reservation. The caller runs the conflict check
// before persisting; New only enforces local validity.
func New(params CreateParams) (*Reservation, error) {
	if params.UserID == "" {
		return nil, errors.New("reservation: user id required")
	}
	if params.SpaceID == "" {
		return nil, errors.New("reservation: space id required")
	}
	if params.Date.IsZero() {
		return nil, errors.New("reservation: date required")
	}
	interval, err := civil.NewInterval(params.Start, params.End)
	if err != nil {
		return nil, ErrInvalidInterval
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:        params.ID,
		UserID:    params.UserID,
		SpaceID:   params.SpaceID,
		Date:      params.Date,
		Interval:  interval,
		Status:    StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(Created{
		ReservationID: r.ID,
		SpaceID:       r.SpaceID,
		UserID:        r.UserID,
		Date:          r.Date,
		Interval:      r.Interval,
		At:            now,
	})
	return r, nil
}

// Cancel flips the reservation to CANCELLED. A second cancel is an error,
// not a no-op.
func (r *Reservation) Cancel(now time.Time) error {
	if r.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	r.Status = StatusCancelled
	r.UpdatedAt = now.UTC()
	r.Record(Cancelled{ReservationID: r.ID, SpaceID: r.SpaceID, At: r.UpdatedAt})
	return nil
}

// ExtendTo moves the end time strictly later. Only CONFIRMED reservations
// can be extended; the caller has already cleared the delta window with the
// conflict check.
func (r *Reservation) ExtendTo(newEnd civil.TimeOfDay, now time.Time) error {
	if r.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if !newEnd.After(r.Interval.End) {
		return ErrInvalidInterval
	}
	previousEnd := r.Interval.End
	r.Interval.End = newEnd
	r.UpdatedAt = now.UTC()
	r.Record(Extended{
		ReservationID: r.ID,
		SpaceID:       r.SpaceID,
		PreviousEnd:   previousEnd,
		NewEnd:        newEnd,
		At:            r.UpdatedAt,
	})
	return nil
}

// OwnedBy reports whether userID may mutate this reservation.
func (r *Reservation) OwnedBy(userID string) bool {
	return r.UserID == userID
}
