// Package civil holds timezone-free calendar dates and times of day.
// Reservations are interpreted in the space's local civil time, so the
// domain never carries a location.
package civil

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate     = errors.New("civil: invalid date")
	ErrInvalidTime     = errors.New("civil: invalid time of day")
	ErrInvalidInterval = errors.New("civil: interval end must be after start")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Date is a calendar date without a timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf truncates t to its calendar date, discarding clock and zone.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare returns -1, 0 or +1 ordering d against other chronologically.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// TimeOfDay is a clock reading expressed as minutes since midnight.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// TimeOfDayOf truncates t to whole minutes since local midnight.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t > other }

// AddMinutes returns the time of day m minutes later. The result is not
// clamped to the day, callers bound it against the closing time instead.
func (t TimeOfDay) AddMinutes(m int) TimeOfDay {
	return t + TimeOfDay(m)
}

// Interval is a half-open time window [Start, End) within one day.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewInterval(start, end TimeOfDay) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start < 0 || iv.End <= iv.Start {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether the two half-open windows share any instant.
// Touching endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

func (iv Interval) String() string {
	return iv.Start.String() + "-" + iv.End.String()
}
