package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// CreateIfFree inserts the booking if no other booking on the same
	// court overlaps its interval. The check and the insert run as one
	// atomic unit keyed by the court; a losing racer gets ErrTimeConflict.
	CreateIfFree(ctx context.Context, b *Booking) error

	// UpdateIfFree rewrites the booking if its new interval overlaps no
	// other booking on the same court (itself excluded by id).
	UpdateIfFree(ctx context.Context, b *Booking) error

	SetPaid(ctx context.Context, id int64, paid bool) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// FindOnDay returns the bookings whose interval intersects the 24h
	// window starting at dayStart. Intersection, not containment, so
	// midnight-spanning bookings are included.
	FindOnDay(ctx context.Context, courtID int64, dayStart time.Time) ([]*Booking, error)

	Delete(ctx context.Context, id int64) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// lockCourt takes a row lock on the court inside the transaction. All
// check-then-write sequences for the same court serialize on this lock;
// disjoint courts never contend.
func lockCourt(ctx context.Context, tx pgx.Tx, courtID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM public.courts WHERE id = $1 FOR UPDATE`, courtID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCourtNotFound
		}
		return fmt.Errorf("lock court failed: %w", err)
	}
	return nil
}

// hasOverlap checks for any booking on the court conflicting with
// [start, end). excludeID ignores the booking itself during updates; pass 0
// on create.
func hasOverlap(ctx context.Context, tx pgx.Tx, courtID int64, start, end time.Time, excludeID int64) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"court_id": courtID}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start})

	if excludeID != 0 {
		subQuery = subQuery.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	query := "SELECT EXISTS (" + sql + ")"

	var exists bool
	if err := tx.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) CreateIfFree(ctx context.Context, b *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if err := lockCourt(ctx, tx, b.CourtID); err != nil {
		return err
	}

	conflict, err := hasOverlap(ctx, tx, b.CourtID, b.Start, b.End, 0)
	if err != nil {
		return err
	}
	if conflict {
		return ErrTimeConflict
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("court_id", "user_id", "start_time", "end_time", "paid").
		Values(b.CourtID, b.UserID, b.Start, b.End, b.Paid).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if classified := classifyWriteError(err); classified != nil {
			return classified
		}
		return fmt.Errorf("create booking failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *pgxRepository) UpdateIfFree(ctx context.Context, b *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if err := lockCourt(ctx, tx, b.CourtID); err != nil {
		return err
	}

	conflict, err := hasOverlap(ctx, tx, b.CourtID, b.Start, b.End, b.ID)
	if err != nil {
		return err
	}
	if conflict {
		return ErrTimeConflict
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("start_time", b.Start).
		Set("end_time", b.End).
		Set("paid", b.Paid).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if classified := classifyWriteError(err); classified != nil {
			return classified
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *pgxRepository) SetPaid(ctx context.Context, id int64, paid bool) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("paid", paid).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set paid query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set paid failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"b.id", "b.court_id", "c.name", "b.user_id", "u.full_name",
		"b.start_time", "b.end_time", "b.paid", "b.created_at", "b.updated_at",
	).
		From("public.bookings b").
		Join("public.courts c ON b.court_id = c.id").
		Join("public.users u ON b.user_id = u.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var b Booking
	if err := row.Scan(
		&b.ID, &b.CourtID, &b.CourtName, &b.UserID, &b.UserName,
		&b.Start, &b.End, &b.Paid, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.court_id", "c.name", "b.user_id", "u.full_name",
		"b.start_time", "b.end_time", "b.paid", "b.created_at", "b.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.bookings b").
		Join("public.courts c ON b.court_id = c.id").
		Join("public.users u ON b.user_id = u.id")

	if filter.UserID != 0 {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.CourtID != 0 {
		query = query.Where(squirrel.Eq{"b.court_id": filter.CourtID})
	}
	if filter.Paid != nil {
		query = query.Where(squirrel.Eq{"b.paid": *filter.Paid})
	}
	// Time window filtering (intersection logic)
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.end_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.start_time": *filter.To})
	}

	query = query.OrderBy("b.start_time ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.CourtID, &b.CourtName, &b.UserID, &b.UserName,
			&b.Start, &b.End, &b.Paid, &b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) FindOnDay(ctx context.Context, courtID int64, dayStart time.Time) ([]*Booking, error) {
	dayEnd := dayStart.Add(24 * time.Hour)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(
		"id", "court_id", "user_id", "start_time", "end_time", "paid", "created_at", "updated_at",
	).
		From("public.bookings").
		Where(squirrel.Eq{"court_id": courtID}).
		Where(squirrel.Lt{"start_time": dayEnd}).
		Where(squirrel.Gt{"end_time": dayStart}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find on day query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("find bookings on day failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.CourtID, &b.UserID, &b.Start, &b.End, &b.Paid, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// classifyWriteError maps Postgres write failures onto the booking error
// taxonomy. An exclusion or unique violation means the database itself
// rejected a conflicting interval (the schema carries a btree_gist EXCLUDE
// constraint as a second line of defense behind the row lock); lock and
// serialization failures mean the atomic unit could not be guaranteed.
func classifyWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrUnavailable
		}
		return nil
	}

	switch pgErr.Code {
	case pgerrcode.ExclusionViolation, pgerrcode.UniqueViolation:
		return ErrTimeConflict
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return ErrUnavailable
	}
	return nil
}
