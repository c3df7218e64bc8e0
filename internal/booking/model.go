package booking

import (
	"net/http"
	"time"

	"github.com/campolibre/court-booking-backend/internal/pkg/apperror"
	"github.com/campolibre/court-booking-backend/internal/user"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrCourtNotFound    = apperror.New(http.StatusNotFound, "court not found")
	ErrUserNotFound     = apperror.New(http.StatusNotFound, "user not found")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "court is already booked for that time")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrUnavailable      = apperror.New(http.StatusServiceUnavailable, "booking storage unavailable")
)

// Booking is a reservation of one court for one half-open time interval
// [Start, End). CourtName and UserName are denormalized for responses; the
// booking itself only owns the reference ids.
type Booking struct {
	ID        int64
	CourtID   int64
	CourtName string
	UserID    int64
	UserName  string
	Start     time.Time
	End       time.Time
	Paid      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns the booked time range.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

// Actor is the authenticated identity performing a booking operation. It is
// passed explicitly into every service call; the booking core never reads
// ambient authentication state.
type Actor struct {
	ID   int64
	Role user.Role
}

// CanMutate is the single authorization rule for booking mutations:
// operators and admins may act on any booking, customers only on their own.
func (a Actor) CanMutate(b *Booking) bool {
	if a.Role.IsStaff() {
		return true
	}
	return a.ID == b.UserID
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID  int64
	CourtID int64
	Paid    *bool
	From    *time.Time // intersection window start
	To      *time.Time // intersection window end

	Page     int
	PageSize int
}
