package http

import (
	"time"

	"github.com/campolibre/court-booking-backend/internal/court"
	"github.com/campolibre/court-booking-backend/internal/pkg/request"
)

// CourtTag is the minimal court reference embedded in other responses.
type CourtTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CourtResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Covered     bool      `json:"covered"`
	Lit         bool      `json:"lit"`
	HourlyPrice float64   `json:"hourly_price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCourtResponse(c *court.Court) CourtResponse {
	return CourtResponse{
		ID:          c.ID,
		Name:        c.Name,
		Category:    c.Category,
		Covered:     c.Covered,
		Lit:         c.Lit,
		HourlyPrice: c.HourlyPrice,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type CreateCourtBody struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Covered     bool    `json:"covered"`
	Lit         bool    `json:"lit"`
	HourlyPrice float64 `json:"hourly_price" binding:"min=0"`
}

type UpdateCourtBody struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Covered     *bool    `json:"covered"`
	Lit         *bool    `json:"lit"`
	HourlyPrice *float64 `json:"hourly_price"`
}

// ListCourtsRequest defines query parameters for listing courts.
type ListCourtsRequest struct {
	request.ListParams
	Category string `form:"category"`
	Covered  *bool  `form:"covered"`
	Lit      *bool  `form:"lit"`
}
