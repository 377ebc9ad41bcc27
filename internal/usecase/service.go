package usecase

import (
	"context"
	"time"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/data/repository"
	"travel-agency/pkg/events"
	"travel-agency/pkg/jwt"
	"travel-agency/pkg/metrics"
	"travel-agency/pkg/utils"

	"go.uber.org/zap"
)

type clock func() time.Time

type Service struct {
	Auth    AuthService
	User    UserService
	Package PackageService
	Booking BookingService
	Payment PaymentService
	Review  ReviewService
	News    NewsService
}

// Deps groups what the services are built from.
type Deps struct {
	Repo      *repository.Repository
	Config    *utils.Config
	Tokens    *jwt.Service
	Publisher events.Publisher
	Gateway   PaymentGateway
	Now       func() time.Time
}

func NewService(deps Deps, log *zap.Logger) *Service {
	now := clock(deps.Now)
	if deps.Now == nil {
		now = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	if deps.Gateway == nil {
		deps.Gateway = StubGateway{}
	}

	return &Service{
		Auth:    NewAuthService(deps.Repo, deps.Tokens, now, log),
		User:    NewUserService(deps.Repo, now, log),
		Package: NewPackageService(deps.Repo, now, log),
		Booking: NewBookingService(deps.Repo, deps.Config.Booking, deps.Publisher, now, log),
		Payment: NewPaymentService(deps.Repo, deps.Config.Booking, deps.Gateway, deps.Publisher, now, log),
		Review:  NewReviewService(deps.Repo, now, log),
		News:    NewNewsService(deps.Repo, now, log),
	}
}

// ==================== HELPER METHODS ====================

func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// clampLimit keeps short listings between 1 and 50 items, falling back to def.
func clampLimit(limit, def int) int {
	if limit < 1 || limit > 50 {
		return def
	}
	return limit
}

// publish is called after commit; failures are only logged.
func publish(ctx context.Context, pub events.Publisher, log *zap.Logger, event any) {
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn("Failed to publish event", zap.Error(err), zap.String("event", eventName(event)))
	}
}

// statusChanged records a booking status transition that has been committed.
func statusChanged(ctx context.Context, pub events.Publisher, log *zap.Logger, booking *entity.Booking, from entity.BookingStatus, cause string) {
	metrics.StatusTransitions.WithLabelValues(string(from), string(booking.Status), cause).Inc()
	publish(ctx, pub, log, events.BookingStatusChanged{
		Header:        events.NewHeader(),
		BookingID:     booking.ID,
		BookingNumber: booking.BookingNumber,
		From:          string(from),
		To:            string(booking.Status),
		Cause:         cause,
	})
}

func eventName(event any) string {
	switch event.(type) {
	case events.BookingCreated, *events.BookingCreated:
		return "BookingCreated"
	case events.BookingStatusChanged, *events.BookingStatusChanged:
		return "BookingStatusChanged"
	case events.PaymentRecorded, *events.PaymentRecorded:
		return "PaymentRecorded"
	case events.PaymentRefunded, *events.PaymentRefunded:
		return "PaymentRefunded"
	}
	return "unknown"
}
