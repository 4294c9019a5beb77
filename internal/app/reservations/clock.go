package reservations

import "time"

// Clock abstracts wall-clock reads so the upcoming-reservation cutoff is
// testable at the exact boundary.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
