package ginserver_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyreserve/internal/app/dto"
	"studyreserve/internal/app/reservations"
	appspaces "studyreserve/internal/app/spaces"
	"studyreserve/internal/domain/spaces"
	"studyreserve/internal/infra/config"
	ginserver "studyreserve/internal/infra/http/gin"
	"studyreserve/internal/infra/obs"
	"studyreserve/internal/infra/security"
	"studyreserve/internal/infra/storage/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	store := memory.NewReservationStore()
	directory := memory.NewSpaceDirectory()
	require.NoError(t, directory.Add(t.Context(), &spaces.StudySpace{
		ID:       "pod-1",
		Name:     "Pod 1",
		Type:     "pod",
		Location: "Main Library",
		Capacity: 4,
	}))

	clock := fixedClock{now: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc, err := reservations.NewService(reservations.Config{
		Store:     store,
		Directory: directory,
		Clock:     clock,
		Logger:    logger,
	})
	require.NoError(t, err)

	auth := ginserver.AuthMiddleware{
		Resolver: security.NewStaticPrincipalResolver(map[string]string{
			"tok-alice": "alice",
			"tok-bob":   "bob",
		}),
		Logger: logger,
	}
	srv := ginserver.NewServer(
		config.Config{Env: "test", HTTPAddr: ":0"},
		obs.Middleware{Logger: logger},
		obs.HealthHandlers{},
		ginserver.Handlers{
			Reservations:   ginserver.ReservationHandler{Service: svc, Clock: clock},
			Spaces:         ginserver.SpaceHandler{Catalog: appspaces.NewCatalog(directory)},
			AuthMiddleware: auth.Handle,
		},
	)
	return srv.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const createBody = `{"space_id":"pod-1","date":"2026-09-15","start_time":"09:00","end_time":"10:00"}`

func TestCreateRequiresAuth(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "", createBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations", "bogus", createBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservation(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-alice", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "alice", resp.UserID)
	assert.Equal(t, "pod-1", resp.SpaceID)
	assert.Equal(t, "2026-09-15", resp.Date)
	assert.Equal(t, "09:00", resp.StartTime)
	assert.Equal(t, "10:00", resp.EndTime)
	assert.Equal(t, "CONFIRMED", resp.Status)
}

func TestCreateConflictIs409(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-alice", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	overlap := `{"space_id":"pod-1","date":"2026-09-15","start_time":"09:30","end_time":"10:30"}`
	rec = doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-bob", overlap)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateUnknownSpaceIs404(t *testing.T) {
	h := newTestServer(t)

	body := `{"space_id":"nope","date":"2026-09-15","start_time":"09:00","end_time":"10:00"}`
	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-alice", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePastDateIs400(t *testing.T) {
	h := newTestServer(t)

	body := `{"space_id":"pod-1","date":"2026-08-31","start_time":"09:00","end_time":"10:00"}`
	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-alice", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelAndForbidden(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-alice", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/v1/reservations/%s", created.ID)

	rec = doJSON(t, h, http.MethodDelete, path, "tok-bob", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, path, "tok-alice", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, path, "tok-alice", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/reservations/missing", "tok-alice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtendReservation(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-alice", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/v1/reservations/%s", created.ID)

	rec = doJSON(t, h, http.MethodPut, path, "tok-alice", `{"new_end_time":"11:00"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var extended dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &extended))
	assert.Equal(t, "11:00", extended.EndTime)

	rec = doJSON(t, h, http.MethodPut, path, "tok-alice", `{"new_end_time":"10:30"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-alice", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/availability", "tok-alice",
		`{"space_id":"pod-1","date":"2026-09-15"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var slots []dto.TimeSlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	require.Len(t, slots, 24)

	var blocked int
	for _, s := range slots {
		if !s.Available {
			blocked++
			assert.Contains(t, []string{"09:00", "09:30"}, s.StartTime)
		}
	}
	// [09:00, 10:00) covers two half-hour cells.
	assert.Equal(t, 2, blocked)
}

func TestUpcomingEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reservations", "tok-alice", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/reservations/upcoming", "tok-alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dto.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/reservations/upcoming", "tok-bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestSpaceEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/spaces", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dto.SpaceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "pod-1", list[0].ID)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/spaces/pod-1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/spaces/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/spaces/search?location=Main", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
