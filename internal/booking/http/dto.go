package http

import (
	"time"

	"github.com/campolibre/court-booking-backend/internal/booking"
	courtHttp "github.com/campolibre/court-booking-backend/internal/court/http"
	userHttp "github.com/campolibre/court-booking-backend/internal/user/http"
)

type BookingResponse struct {
	ID        int64              `json:"id"`
	Court     courtHttp.CourtTag `json:"court"`
	User      userHttp.UserTag   `json:"user"`
	StartTime time.Time          `json:"start_time"`
	EndTime   time.Time          `json:"end_time"`
	Paid      bool               `json:"paid"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Court:     courtHttp.CourtTag{ID: b.CourtID, Name: b.CourtName},
		User:      userHttp.UserTag{ID: b.UserID, Name: b.UserName},
		StartTime: b.Start,
		EndTime:   b.End,
		Paid:      b.Paid,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type CreateBookingBody struct {
	CourtID int64 `json:"court_id" binding:"required,min=1"`
	// UserID books on behalf of another user; staff only. Zero means self.
	UserID    int64     `json:"user_id" binding:"omitempty,min=1"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// Validate performs custom validation for CreateBookingBody.
func (r *CreateBookingBody) Validate() error {
	if !r.StartTime.Before(r.EndTime) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

type UpdateBookingBody struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Paid      *bool      `json:"paid"`
}

// Validate performs custom validation for UpdateBookingBody.
func (r *UpdateBookingBody) Validate() error {
	if r.StartTime != nil && r.EndTime != nil {
		if !r.StartTime.Before(*r.EndTime) {
			return booking.ErrInvalidTimeRange
		}
	}
	return nil
}

type SetPaidBody struct {
	Paid *bool `json:"paid" binding:"required"`
}

// OccupiedSlotsRequest defines query parameters for the availability lookup.
type OccupiedSlotsRequest struct {
	CourtID int64  `form:"court_id" binding:"required,min=1"`
	Date    string `form:"date" binding:"required,datetime=2006-01-02"`
}

type OccupiedSlotsResponse struct {
	CourtID       int64  `json:"court_id"`
	Date          string `json:"date"`
	OccupiedHours []int  `json:"occupied_hours"`
}
