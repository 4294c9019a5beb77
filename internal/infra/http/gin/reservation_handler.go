package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"studyreserve/internal/app/dto"
	"studyreserve/internal/app/reservations"
	"studyreserve/internal/domain/reservation"
	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
)

type ReservationHandler struct {
	Service *reservations.Service
	Clock   reservations.Clock
}

func (h ReservationHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	start, err := civil.ParseTimeOfDay(req.StartTime)
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := civil.ParseTimeOfDay(req.EndTime)
	if err != nil {
		respondError(c, err)
		return
	}
	// Past dates are caller policy, rejected here; the engine itself only
	// requires start < end.
	if date.Before(civil.DateOf(h.Clock.Now())) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservation date must not be in the past"})
		return
	}

	r, err := h.Service.Create(c.Request.Context(), userID, spaces.SpaceID(req.SpaceID), date, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromReservation(r))
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := reservation.ReservationID(c.Param("id"))
	r, err := h.Service.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReservation(r))
}

func (h ReservationHandler) Extend(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ExtendReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	newEnd, err := civil.ParseTimeOfDay(req.NewEndTime)
	if err != nil {
		respondError(c, err)
		return
	}
	id := reservation.ReservationID(c.Param("id"))
	r, err := h.Service.Extend(c.Request.Context(), id, userID, newEnd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReservation(r))
}

func (h ReservationHandler) Mine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.Service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReservations(list))
}

func (h ReservationHandler) Upcoming(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.Service.ListUpcomingForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReservations(list))
}

func (h ReservationHandler) BySpace(c *gin.Context) {
	list, err := h.Service.ListForSpace(c.Request.Context(), spaces.SpaceID(c.Param("spaceId")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReservations(list))
}

func (h ReservationHandler) Availability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	slots, err := h.Service.Availability(c.Request.Context(), spaces.SpaceID(req.SpaceID), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTimeSlots(slots))
}

var _ ReservationHTTP = ReservationHandler{}
