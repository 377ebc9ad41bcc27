package usecase

import (
	"context"
	"errors"
	"fmt"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/data/repository"
	"travel-agency/internal/dto/request"
	"travel-agency/internal/dto/response"
	"travel-agency/pkg/events"
	"travel-agency/pkg/metrics"
	"travel-agency/pkg/receipt"
	"travel-agency/pkg/tracing"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentService interface {
	// Protected endpoints
	RecordPayment(ctx context.Context, actor Actor, req *request.RecordPaymentRequest) (*response.PaymentResultResponse, error)
	GetPaymentStatus(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.PaymentStatusResponse, error)
	ListBookingPayments(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]response.PaymentResponse, error)
	ListMyPayments(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
	GetReceipt(ctx context.Context, actor Actor, paymentID uuid.UUID) (*response.ReceiptResponse, error)
	RenderReceipt(ctx context.Context, actor Actor, paymentID uuid.UUID) ([]byte, string, error)

	// Admin endpoints
	RefundPayment(ctx context.Context, actor Actor, paymentID uuid.UUID) (*response.PaymentResultResponse, error)
	GetStats(ctx context.Context, req *request.StatsRequest) (*response.PaymentStatsResponse, error)

	// Operations
	ReconcileBooking(ctx context.Context, bookingID uuid.UUID) (entity.BookingStatus, bool, error)
	ReconcileAll(ctx context.Context) (checked, changed int, err error)
}

type paymentService struct {
	repo      *repository.Repository
	config    utils.BookingConfig
	gateway   PaymentGateway
	publisher events.Publisher
	clock     clock
	log       *zap.Logger
}

func NewPaymentService(
	repo *repository.Repository,
	config utils.BookingConfig,
	gateway PaymentGateway,
	publisher events.Publisher,
	clock clock,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		repo:      repo,
		config:    config,
		gateway:   gateway,
		publisher: publisher,
		clock:     clock,
		log:       log.With(zap.String("service", "payment")),
	}
}

// ==================== LEDGER MUTATIONS ====================

func (s *paymentService) RecordPayment(ctx context.Context, actor Actor, req *request.RecordPaymentRequest) (*response.PaymentResultResponse, error) {
	ctx, span := tracing.Start(ctx, "payment.record")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	bookingID := uuid.MustParse(req.BookingID)
	var requested *decimal.Decimal
	if req.Amount != nil {
		amount := decimal.RequireFromString(*req.Amount)
		requested = &amount
	}

	var (
		booking *entity.Booking
		payment *entity.Payment
		summary entity.PaymentSummary
		from    entity.BookingStatus
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("lock booking: %w", err)
		}
		if booking == nil {
			return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		if !actor.CanAccess(booking.UserID) {
			return fmt.Errorf("pay booking %s: %w", bookingID, ErrUnauthorized)
		}
		if booking.Status == entity.BookingStatusCancelled {
			return fmt.Errorf("pay cancelled booking %s: %w", booking.BookingNumber, ErrInvalidBookingState)
		}

		payments, err := tx.Payment.FindByBookingID(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}

		owner, err := tx.User.FindByID(ctx, booking.UserID)
		if err != nil {
			return fmt.Errorf("load booking owner: %w", err)
		}
		vip := owner != nil && owner.Role == entity.RoleVIP

		outstanding := booking.TotalPrice.Sub(SettledTotal(payments))
		amount, discount, err := QuotePayment(outstanding, requested, s.config.VIPDiscountPercentage, vip)
		if err != nil {
			if errors.Is(err, ErrAlreadyPaid) {
				return fmt.Errorf("booking %s: %w", booking.BookingNumber, err)
			}
			return err
		}

		result, err := s.gateway.Charge(ctx, ChargeRequest{
			BookingID:      bookingID,
			UserID:         actor.UserID,
			Amount:         amount,
			Currency:       s.config.DefaultCurrency,
			Method:         entity.PaymentMethod(req.PaymentMethod),
			CardLastDigits: req.CardLastDigits,
		})
		if err != nil {
			return fmt.Errorf("charge payment: %w", err)
		}

		now := s.clock()
		payment = &entity.Payment{
			Base:            entity.NewBase(now),
			BookingID:       bookingID,
			UserID:          actor.UserID,
			Amount:          amount,
			DiscountApplied: discount,
			PaymentMethod:   entity.PaymentMethod(req.PaymentMethod),
			TransactionID:   result.TransactionID,
			Status:          result.Status,
			CardLastDigits:  req.CardLastDigits,
			BillingAddress:  req.BillingAddress,
			PaymentDate:     now,
		}
		if err := tx.Payment.Create(ctx, payment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("transaction %s: %w", payment.TransactionID, ErrConflict)
			}
			return fmt.Errorf("create payment: %w", err)
		}

		payments = append(payments, payment)
		from = booking.Status
		if err := s.reconcile(ctx, tx, booking, payments); err != nil {
			return err
		}
		summary = SummarizePayments(booking.TotalPrice, payments)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(payment.PaymentMethod), string(payment.Status)).Inc()
	publish(ctx, s.publisher, s.log, events.PaymentRecorded{
		Header:          events.NewHeader(),
		PaymentID:       payment.ID,
		BookingID:       booking.ID,
		UserID:          payment.UserID,
		Amount:          payment.Amount,
		DiscountApplied: payment.DiscountApplied,
		PaymentMethod:   string(payment.PaymentMethod),
		TransactionID:   payment.TransactionID,
		Status:          string(payment.Status),
	})
	if booking.Status != from {
		statusChanged(ctx, s.publisher, s.log, booking, from, "payment")
	}

	s.log.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_number", booking.BookingNumber),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("discount", payment.DiscountApplied.StringFixed(2)),
		zap.String("booking_status", string(booking.Status)),
	)

	return &response.PaymentResultResponse{
		Payment:       response.PaymentToResponse(payment),
		PaymentStatus: response.PaymentStatusToResponse(booking, summary),
	}, nil
}

// RefundPayment marks a completed payment refunded and re-derives the
// booking status. The booking itself is never cancelled here.
func (s *paymentService) RefundPayment(ctx context.Context, actor Actor, paymentID uuid.UUID) (*response.PaymentResultResponse, error) {
	ctx, span := tracing.Start(ctx, "payment.refund")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("refund payment %s: %w", paymentID, ErrUnauthorized)
	}

	found, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
	}

	var (
		booking *entity.Booking
		payment *entity.Payment
		summary entity.PaymentSummary
		from    entity.BookingStatus
	)
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.FindByIDForUpdate(ctx, found.BookingID)
		if err != nil {
			return fmt.Errorf("lock booking: %w", err)
		}
		if booking == nil {
			return fmt.Errorf("booking %s: %w", found.BookingID, ErrNotFound)
		}

		// re-read under the booking lock
		payments, err := tx.Payment.FindByBookingID(ctx, booking.ID)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}
		var ok bool
		payment, ok = lo.Find(payments, func(p *entity.Payment) bool { return p.ID == paymentID })
		if !ok {
			return fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
		}
		if payment.Status != entity.PaymentStatusCompleted {
			return fmt.Errorf("refund %s payment: %w", payment.Status, ErrInvalidState)
		}

		now := s.clock()
		if err := tx.Payment.MarkRefunded(ctx, paymentID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("refund payment %s: %w", paymentID, ErrInvalidState)
			}
			return fmt.Errorf("refund payment: %w", err)
		}
		payment.Status = entity.PaymentStatusRefunded
		payment.RefundedAt = &now

		from = booking.Status
		if err := s.reconcile(ctx, tx, booking, payments); err != nil {
			return err
		}
		summary = SummarizePayments(booking.TotalPrice, payments)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsRefunded.Inc()
	publish(ctx, s.publisher, s.log, events.PaymentRefunded{
		Header:        events.NewHeader(),
		PaymentID:     payment.ID,
		BookingID:     booking.ID,
		Amount:        payment.Amount,
		TransactionID: payment.TransactionID,
	})
	if booking.Status != from {
		statusChanged(ctx, s.publisher, s.log, booking, from, "refund")
	}

	s.log.Info("Payment refunded",
		zap.String("payment_id", paymentID.String()),
		zap.String("booking_number", booking.BookingNumber),
		zap.String("booking_status", string(booking.Status)),
	)

	return &response.PaymentResultResponse{
		Payment:       response.PaymentToResponse(payment),
		PaymentStatus: response.PaymentStatusToResponse(booking, summary),
	}, nil
}

// ==================== RECONCILIATION ====================

// ReconcileBooking re-derives the status of one booking from its payments.
func (s *paymentService) ReconcileBooking(ctx context.Context, bookingID uuid.UUID) (entity.BookingStatus, bool, error) {
	var (
		booking *entity.Booking
		from    entity.BookingStatus
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("lock booking: %w", err)
		}
		if booking == nil {
			return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}

		payments, err := tx.Payment.FindByBookingID(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}

		from = booking.Status
		return s.reconcile(ctx, tx, booking, payments)
	})
	if err != nil {
		return "", false, err
	}

	changed := booking.Status != from
	if changed {
		statusChanged(ctx, s.publisher, s.log, booking, from, "reconcile")
	}
	return booking.Status, changed, nil
}

// ReconcileAll walks every non-cancelled booking. Failures are logged and skipped.
func (s *paymentService) ReconcileAll(ctx context.Context) (checked, changed int, err error) {
	ids, err := s.repo.Booking.ListIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list bookings: %w", err)
	}

	var failed int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return checked, changed, err
		}

		_, ok, err := s.ReconcileBooking(ctx, id)
		checked++
		if err != nil {
			failed++
			s.log.Error("Failed to reconcile booking", zap.Error(err), zap.String("booking_id", id.String()))
			continue
		}
		if ok {
			changed++
		}
	}

	s.log.Info("Reconciliation finished",
		zap.Int("checked", checked),
		zap.Int("changed", changed),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return checked, changed, fmt.Errorf("%d of %d bookings failed to reconcile", failed, checked)
	}
	return checked, changed, nil
}

// ==================== QUERIES ====================

func (s *paymentService) GetPaymentStatus(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.PaymentStatusResponse, error) {
	booking, payments, err := s.bookingLedger(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	resp := response.PaymentStatusToResponse(booking, SummarizePayments(booking.TotalPrice, payments))
	return &resp, nil
}

func (s *paymentService) ListBookingPayments(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]response.PaymentResponse, error) {
	_, payments, err := s.bookingLedger(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	return response.PaymentsToResponse(payments), nil
}

func (s *paymentService) ListMyPayments(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	payments, err := s.repo.Payment.FindByUserID(ctx, actor.UserID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list user payments: %w", err)
	}

	total, err := s.repo.Payment.CountByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("count user payments: %w", err)
	}

	return response.NewPaginatedResponse(response.PaymentsToResponse(payments), req.Page, req.Limit(), total), nil
}

func (s *paymentService) GetStats(ctx context.Context, req *request.StatsRequest) (*response.PaymentStatsResponse, error) {
	from, to, err := statsWindow(req)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Payment.Stats(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("payment stats: %w", err)
	}

	resp := response.PaymentStatsToResponse(stats)
	return &resp, nil
}

// ==================== RECEIPTS ====================

func (s *paymentService) GetReceipt(ctx context.Context, actor Actor, paymentID uuid.UUID) (*response.ReceiptResponse, error) {
	rc, err := s.loadReceipt(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}

	return &response.ReceiptResponse{
		ReceiptNumber: utils.ReceiptNumber(rc.payment.ID),
		Currency:      s.config.DefaultCurrency,
		Customer:      response.ReceiptCustomer{Name: rc.customer.Name, Email: rc.customer.Email},
		Booking:       response.BookingToResponse(rc.booking, rc.destination),
		Payment:       response.PaymentToResponse(rc.payment),
		PaymentStatus: response.PaymentStatusToResponse(rc.booking, rc.summary),
	}, nil
}

// RenderReceipt returns the receipt as a PDF together with its file name.
func (s *paymentService) RenderReceipt(ctx context.Context, actor Actor, paymentID uuid.UUID) ([]byte, string, error) {
	rc, err := s.loadReceipt(ctx, actor, paymentID)
	if err != nil {
		return nil, "", err
	}

	number := utils.ReceiptNumber(rc.payment.ID)
	body, err := receipt.Render(receipt.Data{
		ReceiptNumber:  number,
		BookingNumber:  rc.booking.BookingNumber,
		TransactionID:  rc.payment.TransactionID,
		CustomerName:   rc.customer.Name,
		CustomerEmail:  rc.customer.Email,
		Destination:    rc.destination,
		TravelDate:     rc.booking.TravelDate.Format(utils.DateLayout),
		Travelers:      rc.booking.NumberOfTravelers,
		PaymentMethod:  string(rc.payment.PaymentMethod),
		CardLastDigits: lo.FromPtr(rc.payment.CardLastDigits),
		Status:         string(rc.payment.Status),
		Currency:       s.config.DefaultCurrency,
		Amount:         rc.payment.Amount,
		Discount:       rc.payment.DiscountApplied,
		TotalPrice:     rc.booking.TotalPrice,
		TotalPaid:      rc.summary.TotalPaid,
		PaymentDate:    rc.payment.PaymentDate,
	})
	if err != nil {
		s.log.Error("Failed to render receipt", zap.Error(err), zap.String("payment_id", paymentID.String()))
		return nil, "", fmt.Errorf("render receipt: %w", err)
	}

	return body, number + ".pdf", nil
}

// ==================== HELPER METHODS ====================

// reconcile persists the derived status when it differs from the stored one.
// Callers hold the booking row lock.
func (s *paymentService) reconcile(ctx context.Context, tx *repository.Repository, booking *entity.Booking, payments []*entity.Payment) error {
	next := ReconcileStatus(booking.Status, booking.TotalPrice, payments)
	if next == booking.Status {
		return nil
	}

	if err := tx.Booking.UpdateStatus(ctx, booking.ID, next); err != nil {
		return fmt.Errorf("reconcile booking %s: %w", booking.BookingNumber, err)
	}
	booking.Status = next
	booking.UpdatedAt = s.clock()
	return nil
}

func (s *paymentService) bookingLedger(ctx context.Context, actor Actor, bookingID uuid.UUID) (*entity.Booking, []*entity.Payment, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if !actor.CanAccess(booking.UserID) {
		return nil, nil, fmt.Errorf("view payments of booking %s: %w", bookingID, ErrUnauthorized)
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("find payments: %w", err)
	}
	return booking, payments, nil
}

type receiptContext struct {
	payment     *entity.Payment
	booking     *entity.Booking
	customer    *entity.User
	destination string
	summary     entity.PaymentSummary
}

func (s *paymentService) loadReceipt(ctx context.Context, actor Actor, paymentID uuid.UUID) (*receiptContext, error) {
	payment, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
	}

	booking, err := s.repo.Booking.FindByID(ctx, payment.BookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", payment.BookingID, ErrNotFound)
	}
	if !actor.CanAccess(booking.UserID) && actor.UserID != payment.UserID {
		return nil, fmt.Errorf("receipt %s: %w", paymentID, ErrUnauthorized)
	}

	customer, err := s.repo.User.FindByID(ctx, booking.UserID)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %s: %w", booking.UserID, ErrNotFound)
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}

	rc := &receiptContext{
		payment:  payment,
		booking:  booking,
		customer: customer,
		summary:  SummarizePayments(booking.TotalPrice, payments),
	}

	pkg, err := s.repo.Package.FindByID(ctx, booking.PackageID)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}
	if pkg != nil {
		rc.destination = pkg.Destination
	}

	return rc, nil
}
