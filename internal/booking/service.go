package booking

import (
	"context"
	"errors"
	"time"

	"github.com/campolibre/court-booking-backend/internal/court"
	"github.com/campolibre/court-booking-backend/internal/pkg/metrics"
	"github.com/campolibre/court-booking-backend/internal/user"
)

type CreateRequest struct {
	CourtID int64
	// UserID optionally books on behalf of another user. Zero means the
	// actor books for themselves; a different id is staff-only.
	UserID int64
	Start  time.Time
	End    time.Time
}

// UpdateRequest carries the editable booking fields. Nil means unchanged.
type UpdateRequest struct {
	Start *time.Time
	End   *time.Time
	Paid  *bool
}

type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, actor Actor, id int64, req UpdateRequest) (*Booking, error)
	SetPaid(ctx context.Context, actor Actor, id int64, paid bool) (*Booking, error)
	Delete(ctx context.Context, actor Actor, id int64) error

	// OccupiedHours reports which business-hour slots of the given UTC day
	// are occupied on the court. Advisory only: a booking committed right
	// after the snapshot read is not reflected.
	OccupiedHours(ctx context.Context, courtID int64, day time.Time) ([]int, error)
}

type service struct {
	repo         Repository
	courtService court.Service
	userService  user.Service
}

func NewService(repo Repository, courtService court.Service, userService user.Service) Service {
	return &service{
		repo:         repo,
		courtService: courtService,
		userService:  userService,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*Booking, error) {
	iv := Interval{Start: req.Start, End: req.End}
	if !iv.IsValid() {
		return nil, ErrInvalidTimeRange
	}

	// Booking on behalf of another user is staff-only; customers always
	// book for their own identity.
	ownerID := actor.ID
	if req.UserID != 0 && req.UserID != actor.ID {
		if !actor.Role.IsStaff() {
			return nil, ErrPermissionDenied
		}
		ownerID = req.UserID
	}

	if _, err := s.userService.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.courtService.GetByID(ctx, req.CourtID); err != nil {
		if errors.Is(err, court.ErrNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}

	b := &Booking{
		CourtID: req.CourtID,
		UserID:  ownerID,
		Start:   req.Start,
		End:     req.End,
		Paid:    false,
	}

	// The repository performs the overlap check and the insert as one
	// atomic unit keyed by the court. Losing a race surfaces here as
	// ErrTimeConflict, same as an ordinary conflict.
	if err := s.repo.CreateIfFree(ctx, b); err != nil {
		if errors.Is(err, ErrTimeConflict) {
			metrics.RecordBookingConflict()
		}
		return nil, err
	}

	metrics.RecordBookingCreated()
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, actor Actor, id int64, req UpdateRequest) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanMutate(b) {
		return nil, ErrPermissionDenied
	}

	newStart := b.Start
	newEnd := b.End
	timeChanged := false

	if req.Start != nil {
		newStart = *req.Start
		timeChanged = true
	}
	if req.End != nil {
		newEnd = *req.End
		timeChanged = true
	}

	if timeChanged {
		iv := Interval{Start: newStart, End: newEnd}
		if !iv.IsValid() {
			return nil, ErrInvalidTimeRange
		}
		b.Start = newStart
		b.End = newEnd
	}

	if req.Paid != nil {
		b.Paid = *req.Paid
	}

	// Overlap is re-checked against all other bookings on the same court
	// (self excluded by id) inside the same atomic unit as the write.
	// Updating a booking to its own current range therefore never
	// conflicts with itself.
	if err := s.repo.UpdateIfFree(ctx, b); err != nil {
		if errors.Is(err, ErrTimeConflict) {
			metrics.RecordBookingConflict()
		}
		return nil, err
	}

	return b, nil
}

func (s *service) SetPaid(ctx context.Context, actor Actor, id int64, paid bool) (*Booking, error) {
	// Marking a booking paid is a staff privilege regardless of ownership.
	if !actor.Role.IsStaff() {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The interval is unchanged, so no overlap re-check is needed.
	if err := s.repo.SetPaid(ctx, id, paid); err != nil {
		return nil, err
	}

	b.Paid = paid
	return b, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !actor.CanMutate(b) {
		return ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.RecordBookingCancellation()
	return nil
}

func (s *service) OccupiedHours(ctx context.Context, courtID int64, day time.Time) ([]int, error) {
	if _, err := s.courtService.GetByID(ctx, courtID); err != nil {
		if errors.Is(err, court.ErrNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}

	bookings, err := s.repo.FindOnDay(ctx, courtID, DayStart(day))
	if err != nil {
		return nil, err
	}

	return OccupiedHours(day, bookings), nil
}
