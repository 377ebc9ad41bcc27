package repository

import (
	"context"
	"fmt"
	"time"

	"travel-agency/internal/data/entity"
	"travel-agency/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// Create inserts the booking. A booking_number collision returns ErrDuplicate
	// without aborting the enclosing transaction.
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindByIDForUpdate locks the booking row until the enclosing transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByNumber(ctx context.Context, bookingNumber string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context, status entity.BookingStatus) (int64, error)
	FindUpcoming(ctx context.Context, userID *uuid.UUID, from time.Time, limit int) ([]*entity.Booking, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error

	// Business queries
	SumTravelers(ctx context.Context, packageID uuid.UUID, travelDate time.Time) (int, error)
	// TravelersByDate keys the booked travelers by YYYY-MM-DD.
	TravelersByDate(ctx context.Context, packageID uuid.UUID, from, to time.Time) (map[string]int, error)
	HasTraveled(ctx context.Context, userID, packageID uuid.UUID, before time.Time) (bool, error)
	Stats(ctx context.Context, from, to *time.Time) (*entity.BookingStats, error)
	// MostActiveUsers counts every booking a user has made, cancelled ones included.
	MostActiveUsers(ctx context.Context, limit int) ([]*entity.ActiveUser, error)
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, booking_number, user_id, package_id, travel_date, number_of_travelers,
	total_price, status, special_requests, priority, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.UserID,
		&b.PackageID,
		&b.TravelDate,
		&b.NumberOfTravelers,
		&b.TotalPrice,
		&b.Status,
		&b.SpecialRequests,
		&b.Priority,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) collect(rows pgx.Rows, err error) ([]*entity.Booking, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, booking_number, user_id, package_id, travel_date, number_of_travelers,
		                      total_price, status, special_requests, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT ON CONSTRAINT bookings_booking_number_key DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.BookingNumber,
		booking.UserID,
		booking.PackageID,
		booking.TravelDate,
		booking.NumberOfTravelers,
		booking.TotalPrice,
		booking.Status,
		booking.SpecialRequests,
		booking.Priority,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_number", booking.BookingNumber),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingNumber, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking number %s: %w", booking.BookingNumber, ErrDuplicate)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id.String(), id)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id.String(), id)
}

func (r *bookingRepository) FindByNumber(ctx context.Context, bookingNumber string) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_number = $1`, bookingNumber, bookingNumber)
}

func (r *bookingRepository) findOne(ctx context.Context, query, key string, arg any) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("find booking %s: %w", key, err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	bookings, err := r.collect(r.db.Query(ctx, query, userID, limit, offset))
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID, err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID, err)
	}

	return count, nil
}

// FindAll lists bookings newest first. An empty status lists every status.
func (r *bookingRepository) FindAll(ctx context.Context, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	bookings, err := r.collect(r.db.Query(ctx, query, string(status), limit, offset))
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err), zap.String("status", string(status)))
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountAll(ctx context.Context, status entity.BookingStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE ($1::text = '' OR status = $1::text)`, string(status)).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

// FindUpcoming returns non-cancelled bookings travelling on or after from,
// soonest first. A nil userID returns upcoming bookings of every user.
func (r *bookingRepository) FindUpcoming(ctx context.Context, userID *uuid.UUID, from time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE travel_date >= $1
		  AND status <> 'cancelled'
		  AND ($2::uuid IS NULL OR user_id = $2)
		ORDER BY travel_date, created_at
		LIMIT $3
	`

	bookings, err := r.collect(r.db.Query(ctx, query, from, userID, limit))
	if err != nil {
		r.log.Error("Failed to find upcoming bookings", zap.Error(err))
		return nil, fmt.Errorf("find upcoming bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM bookings WHERE status <> 'cancelled' ORDER BY created_at`)
	if err != nil {
		r.log.Error("Failed to list booking IDs", zap.Error(err))
		return nil, fmt.Errorf("list booking IDs: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect booking IDs: %w", err)
	}
	return ids, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID, status, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	return nil
}

// SumTravelers returns the travelers held on a package and date by pending
// and confirmed bookings. Cancelled bookings release their capacity.
func (r *bookingRepository) SumTravelers(ctx context.Context, packageID uuid.UUID, travelDate time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(number_of_travelers), 0)
		FROM bookings
		WHERE package_id = $1
		  AND travel_date = $2
		  AND status IN ('pending', 'confirmed')
	`

	var total int
	if err := r.db.QueryRow(ctx, query, packageID, travelDate).Scan(&total); err != nil {
		r.log.Error("Failed to sum travelers",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
			zap.Time("travel_date", travelDate),
		)
		return 0, fmt.Errorf("sum travelers for package %s: %w", packageID, err)
	}

	return total, nil
}

// TravelersByDate returns SumTravelers for every date in [from, to] that has
// at least one capacity-holding booking.
func (r *bookingRepository) TravelersByDate(ctx context.Context, packageID uuid.UUID, from, to time.Time) (map[string]int, error) {
	query := `
		SELECT to_char(travel_date, 'YYYY-MM-DD'), SUM(number_of_travelers)
		FROM bookings
		WHERE package_id = $1
		  AND travel_date BETWEEN $2 AND $3
		  AND status IN ('pending', 'confirmed')
		GROUP BY travel_date
	`

	rows, err := r.db.Query(ctx, query, packageID, from, to)
	if err != nil {
		r.log.Error("Failed to sum travelers by date",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
		)
		return nil, fmt.Errorf("sum travelers by date for package %s: %w", packageID, err)
	}
	defer rows.Close()

	booked := make(map[string]int)
	for rows.Next() {
		var (
			date  string
			total int
		)
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("scan travelers by date: %w", err)
		}
		booked[date] = total
	}

	return booked, rows.Err()
}

func (r *bookingRepository) HasTraveled(ctx context.Context, userID, packageID uuid.UUID, before time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1
			  AND package_id = $2
			  AND status = 'confirmed'
			  AND travel_date < $3
		)
	`

	var traveled bool
	if err := r.db.QueryRow(ctx, query, userID, packageID, before).Scan(&traveled); err != nil {
		r.log.Error("Failed to check travel history",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("package_id", packageID.String()),
		)
		return false, fmt.Errorf("check travel history: %w", err)
	}

	return traveled, nil
}

// Stats aggregates bookings created within the optional [from, to] window.
func (r *bookingRepository) Stats(ctx context.Context, from, to *time.Time) (*entity.BookingStats, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total_price), 0)
		FROM bookings
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		GROUP BY status
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to compute booking stats", zap.Error(err))
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	defer rows.Close()

	stats := &entity.BookingStats{StatusCounts: make(map[entity.BookingStatus]int64)}
	for _, s := range entity.BookingStatuses {
		stats.StatusCounts[s] = 0
	}

	for rows.Next() {
		var (
			status  entity.BookingStatus
			count   int64
			revenue decimal.Decimal
		)
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			return nil, fmt.Errorf("scan booking stats: %w", err)
		}
		stats.StatusCounts[status] = count
		stats.TotalBookings += count
		if status.HoldsCapacity() {
			stats.TotalRevenue = stats.TotalRevenue.Add(revenue)
		}
	}

	return stats, rows.Err()
}

func (r *bookingRepository) MostActiveUsers(ctx context.Context, limit int) ([]*entity.ActiveUser, error) {
	query := `
		SELECT u.id, u.name, u.email, u.role, COUNT(b.id) AS booking_count
		FROM users u
		JOIN bookings b ON b.user_id = u.id
		GROUP BY u.id, u.name, u.email, u.role
		ORDER BY booking_count DESC, u.name
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to rank active users", zap.Error(err))
		return nil, fmt.Errorf("most active users: %w", err)
	}
	defer rows.Close()

	var users []*entity.ActiveUser
	for rows.Next() {
		var u entity.ActiveUser
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email, &u.Role, &u.Bookings); err != nil {
			return nil, fmt.Errorf("scan active user: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}
