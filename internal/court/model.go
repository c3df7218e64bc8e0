package court

import (
	"net/http"
	"time"

	"github.com/campolibre/court-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "court not found")
	ErrEmptyName     = apperror.New(http.StatusBadRequest, "court name is required")
	ErrEmptyCategory = apperror.New(http.StatusBadRequest, "court category is required")
	ErrNegativePrice = apperror.New(http.StatusBadRequest, "hourly price cannot be negative")
)

// Court is a bookable physical unit. Its ID is assigned at creation and
// never changes; bookings reference it by id only.
type Court struct {
	ID          int64
	Name        string
	Category    string // free-form sport label, e.g. "futbol 5", "padel"
	Covered     bool
	Lit         bool
	HourlyPrice float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing courts.
type Filter struct {
	Category string
	Covered  *bool
	Lit      *bool

	Page     int
	PageSize int
}
