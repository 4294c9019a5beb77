package reservations_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyreserve/internal/app/reservations"
	"studyreserve/internal/domain/reservation"
	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
	"studyreserve/internal/infra/storage/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	svc   *reservations.Service
	store *memory.ReservationStore
	clock *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewReservationStore()
	directory := memory.NewSpaceDirectory()
	for _, id := range []spaces.SpaceID{"pod-1", "pod-2"} {
		err := directory.Add(context.Background(), &spaces.StudySpace{
			ID:       id,
			Name:     string(id),
			Type:     "pod",
			Location: "Main Library",
			Capacity: 4,
		})
		require.NoError(t, err)
	}
	clock := &fakeClock{now: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc, err := reservations.NewService(reservations.Config{
		Store:     store,
		Directory: directory,
		Clock:     clock,
		Logger:    slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return &fixture{svc: svc, store: store, clock: clock}
}

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustTime(t *testing.T, s string) civil.TimeOfDay {
	t.Helper()
	v, err := civil.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func TestCreateUnknownSpace(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Create(context.Background(), "alice", "nope",
		mustDate(t, "2026-09-15"), mustTime(t, "09:00"), mustTime(t, "10:00"))
	assert.ErrorIs(t, err, spaces.ErrSpaceNotFound)
}

func TestCreateInvalidInterval(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Create(context.Background(), "alice", "pod-1",
		mustDate(t, "2026-09-15"), mustTime(t, "10:00"), mustTime(t, "09:00"))
	assert.ErrorIs(t, err, reservation.ErrInvalidInterval)

	_, err = fx.svc.Create(context.Background(), "alice", "pod-1",
		mustDate(t, "2026-09-15"), mustTime(t, "10:00"), mustTime(t, "10:00"))
	assert.ErrorIs(t, err, reservation.ErrInvalidInterval)
}

func TestCreateRejectsOverlap(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := mustDate(t, "2026-09-15")

	_, err := fx.svc.Create(ctx, "alice", "pod-1", date, mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)

	_, err = fx.svc.Create(ctx, "bob", "pod-1", date, mustTime(t, "09:30"), mustTime(t, "10:30"))
	assert.ErrorIs(t, err, reservation.ErrSlotUnavailable)

	// Same interval on another space or date is free.
	_, err = fx.svc.Create(ctx, "bob", "pod-2", date, mustTime(t, "09:30"), mustTime(t, "10:30"))
	assert.NoError(t, err)
	_, err = fx.svc.Create(ctx, "bob", "pod-1", mustDate(t, "2026-09-16"), mustTime(t, "09:30"), mustTime(t, "10:30"))
	assert.NoError(t, err)
}

func TestCreateTouchingEndpointsDoNotConflict(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := mustDate(t, "2026-09-15")

	_, err := fx.svc.Create(ctx, "alice", "pod-1", date, mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)

	_, err = fx.svc.Create(ctx, "bob", "pod-1", date, mustTime(t, "10:00"), mustTime(t, "11:00"))
	require.NoError(t, err)

	confirmed, err := fx.store.ConfirmedBySpaceAndDate(ctx, "pod-1", date)
	require.NoError(t, err)
	assert.Len(t, confirmed, 2)
}

func TestCancelLifecycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := mustDate(t, "2026-09-15")

	r, err := fx.svc.Create(ctx, "alice", "pod-1", date, mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)

	_, err = fx.svc.Cancel(ctx, "missing", "alice")
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	_, err = fx.svc.Cancel(ctx, r.ID, "bob")
	assert.ErrorIs(t, err, reservation.ErrForbidden)

	cancelled, err := fx.svc.Cancel(ctx, r.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, cancelled.Status)

	_, err = fx.svc.Cancel(ctx, r.ID, "alice")
	assert.ErrorIs(t, err, reservation.ErrAlreadyCancelled)

	_, err = fx.svc.Extend(ctx, r.ID, "alice", mustTime(t, "11:00"))
	assert.ErrorIs(t, err, reservation.ErrInvalidState)
}

func TestCancelFreesTheSlot(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := mustDate(t, "2026-09-15")

	r, err := fx.svc.Create(ctx, "alice", "pod-1", date, mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)
	_, err = fx.svc.Cancel(ctx, r.ID, "alice")
	require.NoError(t, err)

	_, err = fx.svc.Create(ctx, "bob", "pod-1", date, mustTime(t, "09:00"), mustTime(t, "10:00"))
	assert.NoError(t, err)
}

func TestExtendChecksOnlyTheDeltaWindow(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := mustDate(t, "2026-09-15")

	r, err := fx.svc.Create(ctx, "alice", "pod-1", date, mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, "bob", "pod-1", date, mustTime(t, "10:30"), mustTime(t, "11:00"))
	require.NoError(t, err)

	// Touching the neighbor is allowed, crossing into it is not.
	_, err = fx.svc.Extend(ctx, r.ID, "alice", mustTime(t, "10:45"))
	assert.ErrorIs(t, err, reservation.ErrSlotUnavailable)

	extended, err := fx.svc.Extend(ctx, r.ID, "alice", mustTime(t, "10:30"))
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "10:30"), extended.Interval.End)
}

func TestExtendValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := mustDate(t, "2026-09-15")

	r, err := fx.svc.Create(ctx, "alice", "pod-1", date, mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)

	_, err = fx.svc.Extend(ctx, "missing", "alice", mustTime(t, "11:00"))
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	_, err = fx.svc.Extend(ctx, r.ID, "bob", mustTime(t, "11:00"))
	assert.ErrorIs(t, err, reservation.ErrForbidden)

	_, err = fx.svc.Extend(ctx, r.ID, "alice", mustTime(t, "10:00"))
	assert.ErrorIs(t, err, reservation.ErrInvalidInterval)

	_, err = fx.svc.Extend(ctx, r.ID, "alice", mustTime(t, "09:30"))
	assert.ErrorIs(t, err, reservation.ErrInvalidInterval)
}

func TestListUpcomingCutoffIsStrict(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// Clock sits at exactly 10:00 on 2026-09-01.
	fx.clock.Set(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	today := mustDate(t, "2026-09-01")
	tomorrow := mustDate(t, "2026-09-02")

	endsNow, err := fx.svc.Create(ctx, "alice", "pod-1", today, mustTime(t, "08:00"), mustTime(t, "10:00"))
	require.NoError(t, err)
	endsLater, err := fx.svc.Create(ctx, "alice", "pod-1", today, mustTime(t, "10:00"), mustTime(t, "11:30"))
	require.NoError(t, err)
	nextDay, err := fx.svc.Create(ctx, "alice", "pod-2", tomorrow, mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)
	cancelled, err := fx.svc.Create(ctx, "alice", "pod-2", tomorrow, mustTime(t, "11:00"), mustTime(t, "12:00"))
	require.NoError(t, err)
	_, err = fx.svc.Cancel(ctx, cancelled.ID, "alice")
	require.NoError(t, err)

	upcoming, err := fx.svc.ListUpcomingForUser(ctx, "alice")
	require.NoError(t, err)

	ids := make([]reservation.ReservationID, 0, len(upcoming))
	for _, r := range upcoming {
		ids = append(ids, r.ID)
	}
	// A reservation ending exactly now is not upcoming; ordering is date
	// then start time.
	assert.Equal(t, []reservation.ReservationID{endsLater.ID, nextDay.ID}, ids)
	assert.NotContains(t, ids, endsNow.ID)
}

func TestListForUserSortsChronologically(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	later, err := fx.svc.Create(ctx, "alice", "pod-1", mustDate(t, "2026-09-16"), mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)
	earlier, err := fx.svc.Create(ctx, "alice", "pod-1", mustDate(t, "2026-09-15"), mustTime(t, "12:00"), mustTime(t, "13:00"))
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, "bob", "pod-2", mustDate(t, "2026-09-15"), mustTime(t, "09:00"), mustTime(t, "10:00"))
	require.NoError(t, err)

	list, err := fx.svc.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)
}

func TestConcurrentCreatesSameSlotOnlyOneWins(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := mustDate(t, "2026-09-15")

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Create(ctx, "alice", "pod-1", date,
				mustTime(t, "09:00"), mustTime(t, "10:00"))
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, reservation.ErrSlotUnavailable)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, lost)
}

func TestConcurrentCreatesAndExtendsNeverOverlap(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := mustDate(t, "2026-09-15")

	seed, err := fx.svc.Create(ctx, "alice", "pod-1", date, mustTime(t, "08:00"), mustTime(t, "08:30"))
	require.NoError(t, err)

	const workers = 40
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := civil.TimeOfDay(8*60 + (i%12)*30)
			if i%5 == 0 {
				_, _ = fx.svc.Extend(ctx, seed.ID, "alice", start.AddMinutes(45))
				return
			}
			_, _ = fx.svc.Create(ctx, "alice", "pod-1", date, start, start.AddMinutes(45))
		}(i)
	}
	wg.Wait()

	confirmed, err := fx.store.ConfirmedBySpaceAndDate(ctx, "pod-1", date)
	require.NoError(t, err)
	require.NotEmpty(t, confirmed)
	for i := 0; i < len(confirmed); i++ {
		for j := i + 1; j < len(confirmed); j++ {
			assert.Falsef(t, confirmed[i].Interval.Overlaps(confirmed[j].Interval),
				"%s overlaps %s", confirmed[i].Interval, confirmed[j].Interval)
		}
	}
}
