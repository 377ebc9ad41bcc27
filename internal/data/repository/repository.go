package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"travel-agency/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrDuplicate is returned when an insert hits a unique constraint
// (booking_number, transaction_id, one review per user and package, user email).
var ErrDuplicate = errors.New("duplicate key")

// ErrNotFound is returned by updates and deletes that matched no row.
// Finders return (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	db  database.PgxIface // nil when the repositories are bound to a transaction
	log *zap.Logger

	// Locker serializes WithTx for repositories that are not backed by a
	// database, standing in for the row locks a transaction would take.
	Locker sync.Locker

	User    UserRepository
	Session SessionRepository
	Package PackageRepository
	Booking BookingRepository
	Payment PaymentRepository
	Review  ReviewRepository
	News    NewsRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	r := bind(db, log)
	r.db = db
	return r
}

func bind(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		log:     log,
		User:    NewUserRepository(q, log),
		Session: NewSessionRepository(q, log),
		Package: NewPackageRepository(q, log),
		Booking: NewBookingRepository(q, log),
		Payment: NewPaymentRepository(q, log),
		Review:  NewReviewRepository(q, log),
		News:    NewNewsRepository(q, log),
	}
}

// WithTx runs fn against repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Calls
// made on a repository that is already transactional run inside the
// enclosing transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) (err error) {
	if r.db == nil {
		if r.Locker == nil {
			return fn(r)
		}
		r.Locker.Lock()
		defer r.Locker.Unlock()
		inner := *r
		inner.Locker = nil
		return fn(&inner)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(ctx); cErr != nil {
			r.log.Error("Failed to commit transaction", zap.Error(cErr))
			err = fmt.Errorf("commit transaction: %w", cErr)
		}
	}()

	return fn(bind(tx, r.log))
}

// Ping checks database connectivity for the health endpoint.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.Ping(ctx)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
