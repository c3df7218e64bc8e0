package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campolibre/court-booking-backend/internal/court"
	"github.com/campolibre/court-booking-backend/internal/user"
)

// fakeRepository is an in-memory Repository. A single mutex stands in for
// the per-court row lock: check and write happen under it as one unit.
type fakeRepository struct {
	mu       sync.Mutex
	bookings map[int64]*Booking
	nextID   int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{bookings: make(map[int64]*Booking), nextID: 1}
}

func (r *fakeRepository) overlapsLocked(courtID int64, iv Interval, excludeID int64) bool {
	for _, b := range r.bookings {
		if b.CourtID != courtID || b.ID == excludeID {
			continue
		}
		if Overlaps(iv, b.Interval()) {
			return true
		}
	}
	return false
}

func (r *fakeRepository) CreateIfFree(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlapsLocked(b.CourtID, b.Interval(), 0) {
		return ErrTimeConflict
	}

	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt

	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepository) UpdateIfFree(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	if r.overlapsLocked(b.CourtID, b.Interval(), b.ID) {
		return ErrTimeConflict
	}

	b.UpdatedAt = time.Now()
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepository) SetPaid(_ context.Context, id int64, paid bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Paid = paid
	return nil
}

func (r *fakeRepository) GetByID(_ context.Context, id int64) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepository) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if filter.UserID != 0 && b.UserID != filter.UserID {
			continue
		}
		if filter.CourtID != 0 && b.CourtID != filter.CourtID {
			continue
		}
		if filter.Paid != nil && b.Paid != *filter.Paid {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeRepository) FindOnDay(_ context.Context, courtID int64, dayStart time.Time) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	window := Interval{Start: dayStart, End: dayStart.Add(24 * time.Hour)}

	var out []*Booking
	for _, b := range r.bookings {
		if b.CourtID != courtID {
			continue
		}
		if Overlaps(window, b.Interval()) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

type fakeCourtService struct {
	courts map[int64]*court.Court
}

func (f *fakeCourtService) GetByID(_ context.Context, id int64) (*court.Court, error) {
	c, ok := f.courts[id]
	if !ok {
		return nil, court.ErrNotFound
	}
	return c, nil
}

func (f *fakeCourtService) Create(context.Context, court.CreateRequest) (*court.Court, error) {
	panic("not used")
}

func (f *fakeCourtService) List(context.Context, court.Filter) ([]*court.Court, int, error) {
	panic("not used")
}

func (f *fakeCourtService) Update(context.Context, int64, court.UpdateRequest) (*court.Court, error) {
	panic("not used")
}

func (f *fakeCourtService) Delete(context.Context, int64) error {
	panic("not used")
}

type fakeUserService struct {
	users map[int64]*user.User
}

func (f *fakeUserService) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserService) Register(context.Context, string, string, string) (*user.User, error) {
	panic("not used")
}

func (f *fakeUserService) Login(context.Context, string, string) (*user.User, error) {
	panic("not used")
}

func (f *fakeUserService) List(context.Context, user.Filter) ([]*user.User, int, error) {
	panic("not used")
}

func (f *fakeUserService) Update(context.Context, int64, user.UpdateRequest) (*user.User, error) {
	panic("not used")
}

func (f *fakeUserService) Delete(context.Context, int64) error {
	panic("not used")
}

func newTestService() (Service, *fakeRepository) {
	repo := newFakeRepository()

	courts := &fakeCourtService{courts: map[int64]*court.Court{
		1: {ID: 1, Name: "Court A", Category: "padel"},
		2: {ID: 2, Name: "Court B", Category: "tennis"},
	}}
	users := &fakeUserService{users: map[int64]*user.User{
		10: {ID: 10, FullName: "Carlos Cliente", Role: user.RoleCustomer, IsActive: true},
		11: {ID: 11, FullName: "Clara Cliente", Role: user.RoleCustomer, IsActive: true},
		20: {ID: 20, FullName: "Oscar Operador", Role: user.RoleOperator, IsActive: true},
	}}

	return NewService(repo, courts, users), repo
}

var (
	customerActor      = Actor{ID: 10, Role: user.RoleCustomer}
	otherCustomerActor = Actor{ID: 11, Role: user.RoleCustomer}
	operatorActor      = Actor{ID: 20, Role: user.RoleOperator}
	adminActor         = Actor{ID: 99, Role: user.RoleAdmin}
)

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("customer books for themselves", func(t *testing.T) {
		svc, _ := newTestService()

		b, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		assert.Equal(t, customerActor.ID, b.UserID)
		assert.False(t, b.Paid, "new bookings start unpaid")
		assert.NotZero(t, b.ID)
	})

	t.Run("invalid time range is rejected before any write", func(t *testing.T) {
		svc, repo := newTestService()

		_, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
		})

		assert.ErrorIs(t, err, ErrInvalidTimeRange)
		assert.Empty(t, repo.bookings)
	})

	t.Run("zero-length range is rejected", func(t *testing.T) {
		svc, _ := newTestService()

		start := time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, customerActor, CreateRequest{CourtID: 1, Start: start, End: start})

		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("unknown court", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 999,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})

		assert.ErrorIs(t, err, ErrCourtNotFound)
	})

	t.Run("overlapping booking on the same court conflicts", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 17, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, otherCustomerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 18, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, ErrTimeConflict)
	})

	t.Run("same interval on a different court is fine", func(t *testing.T) {
		svc, _ := newTestService()

		start := time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC)
		end := time.Date(2025, 12, 17, 17, 0, 0, 0, time.UTC)

		_, err := svc.Create(ctx, customerActor, CreateRequest{CourtID: 1, Start: start, End: end})
		require.NoError(t, err)

		_, err = svc.Create(ctx, otherCustomerActor, CreateRequest{CourtID: 2, Start: start, End: end})
		assert.NoError(t, err)
	})

	t.Run("back-to-back bookings never conflict", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, otherCustomerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 17, 0, 0, 0, time.UTC),
		})
		assert.NoError(t, err)
	})

	t.Run("customer cannot book on behalf of another user", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 1,
			UserID:  11,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("operator books on behalf of a customer", func(t *testing.T) {
		svc, _ := newTestService()

		b, err := svc.Create(ctx, operatorActor, CreateRequest{
			CourtID: 1,
			UserID:  10,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(10), b.UserID)
	})

	t.Run("booking on behalf of an unknown user", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Create(ctx, operatorActor, CreateRequest{
			CourtID: 1,
			UserID:  999,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestCreateBookingRace(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	req := CreateRequest{
		CourtID: 1,
		Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
	}

	const racers = 8
	errs := make(chan error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, customerActor, req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var created, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			created++
		default:
			require.ErrorIs(t, err, ErrTimeConflict)
			conflicted++
		}
	}

	assert.Equal(t, 1, created, "exactly one racer wins")
	assert.Equal(t, racers-1, conflicted)
	assert.Len(t, repo.bookings, 1)
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc Service) *Booking {
		t.Helper()
		b, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		return b
	}

	t.Run("owner moves their booking", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		newStart := time.Date(2025, 12, 17, 18, 0, 0, 0, time.UTC)
		newEnd := time.Date(2025, 12, 17, 19, 0, 0, 0, time.UTC)

		updated, err := svc.Update(ctx, customerActor, b.ID, UpdateRequest{Start: &newStart, End: &newEnd})

		require.NoError(t, err)
		assert.True(t, updated.Start.Equal(newStart))
		assert.True(t, updated.End.Equal(newEnd))
	})

	t.Run("rewriting the same range does not conflict with itself", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		start := b.Start
		end := b.End
		_, err := svc.Update(ctx, customerActor, b.ID, UpdateRequest{Start: &start, End: &end})

		assert.NoError(t, err)
	})

	t.Run("moving onto another booking conflicts", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		_, err := svc.Create(ctx, otherCustomerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 18, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 19, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		newStart := time.Date(2025, 12, 17, 18, 30, 0, 0, time.UTC)
		newEnd := time.Date(2025, 12, 17, 19, 30, 0, 0, time.UTC)
		_, err = svc.Update(ctx, customerActor, b.ID, UpdateRequest{Start: &newStart, End: &newEnd})

		assert.ErrorIs(t, err, ErrTimeConflict)
	})

	t.Run("partial update keeps the other endpoint", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		newEnd := time.Date(2025, 12, 17, 17, 0, 0, 0, time.UTC)
		updated, err := svc.Update(ctx, customerActor, b.ID, UpdateRequest{End: &newEnd})

		require.NoError(t, err)
		assert.True(t, updated.Start.Equal(b.Start))
		assert.True(t, updated.End.Equal(newEnd))
	})

	t.Run("partial update forming an inverted range is rejected", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		newEnd := time.Date(2025, 12, 17, 14, 0, 0, 0, time.UTC)
		_, err := svc.Update(ctx, customerActor, b.ID, UpdateRequest{End: &newEnd})

		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("another customer cannot touch the booking", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		newEnd := time.Date(2025, 12, 17, 17, 0, 0, 0, time.UTC)
		_, err := svc.Update(ctx, otherCustomerActor, b.ID, UpdateRequest{End: &newEnd})

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("staff can move any booking", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		newEnd := time.Date(2025, 12, 17, 17, 0, 0, 0, time.UTC)
		_, err := svc.Update(ctx, operatorActor, b.ID, UpdateRequest{End: &newEnd})

		assert.NoError(t, err)
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc, _ := newTestService()

		newEnd := time.Date(2025, 12, 17, 17, 0, 0, 0, time.UTC)
		_, err := svc.Update(ctx, customerActor, 999, UpdateRequest{End: &newEnd})

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSetPaid(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc Service) *Booking {
		t.Helper()
		b, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		return b
	}

	t.Run("operator marks a booking paid", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		updated, err := svc.SetPaid(ctx, operatorActor, b.ID, true)

		require.NoError(t, err)
		assert.True(t, updated.Paid)

		got, err := svc.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, got.Paid)
	})

	t.Run("admin marks a booking unpaid again", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		_, err := svc.SetPaid(ctx, adminActor, b.ID, true)
		require.NoError(t, err)

		updated, err := svc.SetPaid(ctx, adminActor, b.ID, false)
		require.NoError(t, err)
		assert.False(t, updated.Paid)
	})

	t.Run("owner cannot mark their own booking paid", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		_, err := svc.SetPaid(ctx, customerActor, b.ID, true)

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("unknown booking for staff", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.SetPaid(ctx, operatorActor, 999, true)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteBooking(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc Service) *Booking {
		t.Helper()
		b, err := svc.Create(ctx, customerActor, CreateRequest{
			CourtID: 1,
			Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
			End:     time.Date(2025, 12, 17, 16, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		return b
	}

	t.Run("owner cancels their booking and frees the slot", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		require.NoError(t, svc.Delete(ctx, customerActor, b.ID))

		_, err := svc.GetByID(ctx, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		// The freed interval is bookable again.
		_, err = svc.Create(ctx, otherCustomerActor, CreateRequest{
			CourtID: 1,
			Start:   b.Start,
			End:     b.End,
		})
		assert.NoError(t, err)
	})

	t.Run("another customer cannot cancel", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		err := svc.Delete(ctx, otherCustomerActor, b.ID)

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("staff cancels any booking", func(t *testing.T) {
		svc, _ := newTestService()
		b := seed(t, svc)

		assert.NoError(t, svc.Delete(ctx, adminActor, b.ID))
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc, _ := newTestService()

		err := svc.Delete(ctx, customerActor, 999)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceOccupiedHours(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Create(ctx, customerActor, CreateRequest{
		CourtID: 1,
		Start:   time.Date(2025, 12, 17, 15, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 12, 17, 16, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Same day, other court: must not leak into court 1's availability.
	_, err = svc.Create(ctx, otherCustomerActor, CreateRequest{
		CourtID: 2,
		Start:   time.Date(2025, 12, 17, 20, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 12, 17, 21, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	day := time.Date(2025, 12, 17, 0, 0, 0, 0, time.UTC)

	hours, err := svc.OccupiedHours(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, []int{15, 16}, hours)

	hours, err = svc.OccupiedHours(ctx, 2, day)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, hours)

	// A day with no bookings yields an empty, non-nil set.
	hours, err = svc.OccupiedHours(ctx, 1, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{}, hours)

	_, err = svc.OccupiedHours(ctx, 999, day)
	assert.ErrorIs(t, err, ErrCourtNotFound)
}
