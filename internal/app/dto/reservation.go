package dto

import (
	"studyreserve/internal/app/reservations"
	"studyreserve/internal/domain/reservation"
)

type CreateReservationRequest struct {
	SpaceID   string `json:"space_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type ExtendReservationRequest struct {
	NewEndTime string `json:"new_end_time" binding:"required"`
}

type AvailabilityRequest struct {
	SpaceID string `json:"space_id" binding:"required"`
	Date    string `json:"date" binding:"required"`
}

type ReservationResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	SpaceID   string `json:"space_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

func FromReservation(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        string(r.ID),
		UserID:    r.UserID,
		SpaceID:   string(r.SpaceID),
		Date:      r.Date.String(),
		StartTime: r.Interval.Start.String(),
		EndTime:   r.Interval.End.String(),
		Status:    string(r.Status),
	}
}

func FromReservations(list []*reservation.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, FromReservation(r))
	}
	return out
}

type TimeSlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

func FromTimeSlots(slots []reservations.TimeSlot) []TimeSlotResponse {
	out := make([]TimeSlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, TimeSlotResponse{
			StartTime: s.Start.String(),
			EndTime:   s.End.String(),
			Available: s.Available,
		})
	}
	return out
}
