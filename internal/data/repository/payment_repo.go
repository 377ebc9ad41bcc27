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

type PaymentRepository interface {
	// Create inserts the payment. A transaction_id collision returns ErrDuplicate.
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRefunded(ctx context.Context, id uuid.UUID, at time.Time) error
	Stats(ctx context.Context, from, to *time.Time) (*entity.PaymentStats, error)
}

type paymentRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPaymentRepository(db database.Querier, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, booking_id, user_id, amount, discount_applied, payment_method, transaction_id,
	status, card_last_digits, billing_address, payment_date, refunded_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.UserID,
		&p.Amount,
		&p.DiscountApplied,
		&p.PaymentMethod,
		&p.TransactionID,
		&p.Status,
		&p.CardLastDigits,
		&p.BillingAddress,
		&p.PaymentDate,
		&p.RefundedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) collect(rows pgx.Rows, err error) ([]*entity.Payment, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, user_id, amount, discount_applied, payment_method, transaction_id,
		                      status, card_last_digits, billing_address, payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT ON CONSTRAINT payments_transaction_id_key DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.UserID,
		payment.Amount,
		payment.DiscountApplied,
		payment.PaymentMethod,
		payment.TransactionID,
		payment.Status,
		payment.CardLastDigits,
		payment.BillingAddress,
		payment.PaymentDate,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", payment.TransactionID, ErrDuplicate)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id, err)
	}

	return payment, nil
}

// FindByBookingID returns every payment of the booking, refunded and failed
// ones included, newest first.
func (r *paymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1
		ORDER BY payment_date DESC
	`

	payments, err := r.collect(r.db.Query(ctx, query, bookingID))
	if err != nil {
		r.log.Error("Failed to find payments by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find payments by booking ID %s: %w", bookingID, err)
	}

	return payments, nil
}

func (r *paymentRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		ORDER BY payment_date DESC
		LIMIT $2 OFFSET $3
	`

	payments, err := r.collect(r.db.Query(ctx, query, userID, limit, offset))
	if err != nil {
		r.log.Error("Failed to find payments by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find payments by user ID %s: %w", userID, err)
	}

	return payments, nil
}

func (r *paymentRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count payments by user ID", zap.Error(err))
		return 0, fmt.Errorf("count payments by user ID %s: %w", userID, err)
	}
	return count, nil
}

// MarkRefunded flips a completed payment to refunded. It matches no row, and
// returns ErrNotFound, when the payment is missing or not completed.
func (r *paymentRepository) MarkRefunded(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE payments
		SET status = 'refunded', refunded_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'completed'
	`

	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		r.log.Error("Failed to refund payment",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return fmt.Errorf("refund payment %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("completed payment %s: %w", id, ErrNotFound)
	}

	return nil
}

// Stats aggregates completed payments within the optional [from, to] window.
func (r *paymentRepository) Stats(ctx context.Context, from, to *time.Time) (*entity.PaymentStats, error) {
	query := `
		SELECT payment_method, COUNT(*), COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status = 'completed'
		  AND ($1::timestamptz IS NULL OR payment_date >= $1)
		  AND ($2::timestamptz IS NULL OR payment_date <= $2)
		GROUP BY payment_method
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to compute payment stats", zap.Error(err))
		return nil, fmt.Errorf("payment stats: %w", err)
	}
	defer rows.Close()

	stats := &entity.PaymentStats{ByMethod: make(map[entity.PaymentMethod]entity.PaymentMethodStats)}
	for rows.Next() {
		var (
			method entity.PaymentMethod
			count  int64
			amount decimal.Decimal
		)
		if err := rows.Scan(&method, &count, &amount); err != nil {
			return nil, fmt.Errorf("scan payment stats: %w", err)
		}
		stats.ByMethod[method] = entity.PaymentMethodStats{Count: count, Amount: amount}
		stats.TotalPayments += count
		stats.TotalAmount = stats.TotalAmount.Add(amount)
	}

	return stats, rows.Err()
}
