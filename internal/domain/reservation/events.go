package reservation

import (
	"time"

	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
)

type Created struct {
	ReservationID ReservationID
	SpaceID       spaces.SpaceID
	UserID        string
	Date          civil.Date
	Interval      civil.Interval
	At            time.Time
}

func (e Created) EventName() string     { return "reservation.created" }
func (e Created) AggregateID() string   { return string(e.ReservationID) }
func (e Created) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	ReservationID ReservationID
	SpaceID       spaces.SpaceID
	At            time.Time
}

func (e Cancelled) EventName() string     { return "reservation.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.ReservationID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type Extended struct {
	ReservationID ReservationID
	SpaceID       spaces.SpaceID
	PreviousEnd   civil.TimeOfDay
	NewEnd        civil.TimeOfDay
	At            time.Time
}

func (e Extended) EventName() string     { return "reservation.extended" }
func (e Extended) AggregateID() string   { return string(e.ReservationID) }
func (e Extended) OccurredAt() time.Time { return e.At }
