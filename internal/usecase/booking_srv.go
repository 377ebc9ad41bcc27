package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

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

// maxAvailabilityWindow bounds AvailableDates, inclusive of both ends.
const maxAvailabilityWindow = 366

type BookingService interface {
	// Public endpoints
	CheckAvailability(ctx context.Context, packageID uuid.UUID, date string) (*response.AvailabilityResponse, error)
	AvailableDates(ctx context.Context, packageID uuid.UUID, req *request.AvailableDatesRequest) (*response.AvailableDatesResponse, error)

	// Protected endpoints
	CreateBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.BookingDetailResponse, error)
	GetUserBookings(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	UpcomingBookings(ctx context.Context, actor Actor, limit int) ([]response.BookingResponse, error)
	CancelBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.BookingResponse, error)
	RenderConfirmation(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]byte, string, error)
	RenderItinerary(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]byte, string, error)
	HasTraveled(ctx context.Context, userID, packageID uuid.UUID) (bool, error)

	// Admin endpoints
	GetBookingByNumber(ctx context.Context, bookingNumber string) (*response.BookingDetailResponse, error)
	ListBookings(ctx context.Context, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetStats(ctx context.Context, req *request.StatsRequest) (*response.BookingStatsResponse, error)
	MostActiveUsers(ctx context.Context, limit int) ([]response.ActiveUserResponse, error)
}

type bookingService struct {
	repo      *repository.Repository
	config    utils.BookingConfig
	publisher events.Publisher
	clock     clock
	log       *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	config utils.BookingConfig,
	publisher events.Publisher,
	clock clock,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		config:    config,
		publisher: publisher,
		clock:     clock,
		log:       log.With(zap.String("service", "booking")),
	}
}

// ==================== AVAILABILITY ====================

func (s *bookingService) CheckAvailability(ctx context.Context, packageID uuid.UUID, date string) (*response.AvailabilityResponse, error) {
	travelDate, err := utils.ParseDate(date)
	if err != nil {
		return nil, invalid("date", "Must match format "+utils.DateLayout)
	}

	pkg, err := s.repo.Package.FindByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", packageID, ErrNotFound)
	}

	booked, err := s.repo.Booking.SumTravelers(ctx, packageID, travelDate)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}

	return &response.AvailabilityResponse{
		PackageID:         packageID.String(),
		Date:              travelDate.Format(utils.DateLayout),
		Available:         isAvailable(pkg, booked),
		BookedTravelers:   booked,
		RemainingCapacity: remainingCapacity(pkg, booked),
	}, nil
}

// AvailableDates lists every date in [start, end] on which the package still
// has room. Dates before today are never offered.
func (s *bookingService) AvailableDates(ctx context.Context, packageID uuid.UUID, req *request.AvailableDatesRequest) (*response.AvailableDatesResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)
	if end.Before(start) {
		return nil, invalid("EndDate", "Must not be before StartDate")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > maxAvailabilityWindow {
		return nil, invalid("EndDate", fmt.Sprintf("Range must not exceed %d days", maxAvailabilityWindow))
	}

	pkg, err := s.repo.Package.FindByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", packageID, ErrNotFound)
	}

	resp := &response.AvailableDatesResponse{
		PackageID: packageID.String(),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Dates:     []string{},
	}
	if !pkg.Availability {
		return resp, nil
	}

	booked, err := s.repo.Booking.TravelersByDate(ctx, packageID, start, end)
	if err != nil {
		return nil, fmt.Errorf("available dates: %w", err)
	}

	today := utils.Today(s.clock())
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Before(today) {
			continue
		}
		key := day.Format(utils.DateLayout)
		if isAvailable(pkg, booked[key]) {
			resp.Dates = append(resp.Dates, key)
		}
	}

	return resp, nil
}

// ==================== BOOKING LIFECYCLE ====================

func (s *bookingService) CreateBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	ctx, span := tracing.Start(ctx, "booking.create")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}
	if req.NumberOfTravelers > s.config.MaxTravelersPerBooking {
		return nil, invalid("NumberOfTravelers", fmt.Sprintf("Maximum value is %d", s.config.MaxTravelersPerBooking))
	}

	packageID := uuid.MustParse(req.PackageID)
	travelDate, _ := utils.ParseDate(req.TravelDate)
	now := s.clock()
	if travelDate.Before(utils.Today(now)) {
		return nil, invalid("TravelDate", "Must not be in the past")
	}

	var (
		booking *entity.Booking
		pkg     *entity.Package
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		pkg, err = tx.Package.FindByIDForUpdate(ctx, packageID)
		if err != nil {
			return fmt.Errorf("lock package: %w", err)
		}
		if pkg == nil {
			return fmt.Errorf("package %s: %w", packageID, ErrNotFound)
		}
		if !pkg.Availability {
			metrics.BookingsRejected.WithLabelValues("disabled").Inc()
			return fmt.Errorf("package %s is disabled: %w", packageID, ErrUnavailable)
		}

		booked, err := tx.Booking.SumTravelers(ctx, packageID, travelDate)
		if err != nil {
			return fmt.Errorf("check capacity: %w", err)
		}
		if booked+req.NumberOfTravelers > pkg.MaxTravelers {
			metrics.BookingsRejected.WithLabelValues("capacity").Inc()
			return fmt.Errorf("%d of %d places taken on %s: %w",
				booked, pkg.MaxTravelers, req.TravelDate, ErrUnavailable)
		}

		// a free booking is settled from the start
		total := pkg.Price.Mul(decimal.NewFromInt(int64(req.NumberOfTravelers)))
		candidate := &entity.Booking{
			Base:              entity.NewBase(now),
			UserID:            actor.UserID,
			PackageID:         packageID,
			TravelDate:        travelDate,
			NumberOfTravelers: req.NumberOfTravelers,
			TotalPrice:        total,
			Status:            ReconcileStatus(entity.BookingStatusPending, total, nil),
			SpecialRequests:   req.SpecialRequests,
			Priority:          actor.Role == entity.RoleVIP,
		}

		for attempt := 1; ; attempt++ {
			candidate.BookingNumber = utils.GenerateBookingNumber(now)
			err := tx.Booking.Create(ctx, candidate)
			if err == nil {
				booking = candidate
				return nil
			}
			if !errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("create booking: %w", err)
			}

			metrics.BookingNumberCollisions.Inc()
			s.log.Warn("Booking number collision",
				zap.String("booking_number", candidate.BookingNumber),
				zap.Int("attempt", attempt),
			)
			if attempt >= s.config.NumberRetries {
				return fmt.Errorf("after %d attempts: %w", attempt, ErrDuplicateBookingNumber)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.WithLabelValues(strconv.FormatBool(booking.Priority)).Inc()
	publish(ctx, s.publisher, s.log, events.BookingCreated{
		Header:            events.NewHeader(),
		BookingID:         booking.ID,
		BookingNumber:     booking.BookingNumber,
		UserID:            booking.UserID,
		PackageID:         booking.PackageID,
		TravelDate:        booking.TravelDate.Format(utils.DateLayout),
		NumberOfTravelers: booking.NumberOfTravelers,
		TotalPrice:        booking.TotalPrice,
	})

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_number", booking.BookingNumber),
		zap.String("user_id", actor.UserID.String()),
		zap.String("package_id", packageID.String()),
		zap.Int("travelers", booking.NumberOfTravelers),
	)

	resp := response.BookingToResponse(booking, pkg.Destination)
	return &resp, nil
}

// CancelBooking releases the capacity held by a pending or confirmed booking.
// Payments are left untouched; refunds are a separate admin operation.
func (s *bookingService) CancelBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.BookingResponse, error) {
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
		if !actor.CanAccess(booking.UserID) {
			return fmt.Errorf("cancel booking %s: %w", bookingID, ErrUnauthorized)
		}

		switch booking.Status {
		case entity.BookingStatusPending, entity.BookingStatusConfirmed:
		default:
			return fmt.Errorf("cancel %s booking: %w", booking.Status, ErrInvalidBookingState)
		}

		from = booking.Status
		if err := tx.Booking.UpdateStatus(ctx, bookingID, entity.BookingStatusCancelled); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		booking.Status = entity.BookingStatusCancelled
		booking.UpdatedAt = s.clock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	statusChanged(ctx, s.publisher, s.log, booking, from, "cancel")

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("by", actor.UserID.String()),
	)

	resp := response.BookingToResponse(booking, s.destination(ctx, booking.PackageID))
	return &resp, nil
}

func (s *bookingService) HasTraveled(ctx context.Context, userID, packageID uuid.UUID) (bool, error) {
	return s.repo.Booking.HasTraveled(ctx, userID, packageID, utils.Today(s.clock()))
}

// ==================== QUERIES ====================

func (s *bookingService) GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.BookingDetailResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if !actor.CanAccess(booking.UserID) {
		return nil, fmt.Errorf("view booking %s: %w", bookingID, ErrUnauthorized)
	}

	return s.detail(ctx, booking)
}

// ==================== DOCUMENTS ====================

// RenderConfirmation returns the booking confirmation PDF and its file name.
func (s *bookingService) RenderConfirmation(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]byte, string, error) {
	doc, err := s.document(ctx, actor, bookingID)
	if err != nil {
		return nil, "", err
	}

	body, err := receipt.RenderConfirmation(doc)
	if err != nil {
		s.log.Error("Failed to render confirmation", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, "", fmt.Errorf("render confirmation: %w", err)
	}
	return body, doc.BookingNumber + ".pdf", nil
}

// RenderItinerary returns the day-by-day itinerary PDF and its file name.
// Cancelled bookings have no itinerary.
func (s *bookingService) RenderItinerary(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]byte, string, error) {
	doc, err := s.document(ctx, actor, bookingID)
	if err != nil {
		return nil, "", err
	}
	if doc.Status == string(entity.BookingStatusCancelled) {
		return nil, "", fmt.Errorf("itinerary of cancelled booking %s: %w", bookingID, ErrInvalidBookingState)
	}

	body, err := receipt.RenderItinerary(doc)
	if err != nil {
		s.log.Error("Failed to render itinerary", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, "", fmt.Errorf("render itinerary: %w", err)
	}
	return body, doc.BookingNumber + "-itinerary.pdf", nil
}

func (s *bookingService) document(ctx context.Context, actor Actor, bookingID uuid.UUID) (receipt.Confirmation, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return receipt.Confirmation{}, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return receipt.Confirmation{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if !actor.CanAccess(booking.UserID) {
		return receipt.Confirmation{}, fmt.Errorf("view booking %s: %w", bookingID, ErrUnauthorized)
	}

	customer, err := s.repo.User.FindByID(ctx, booking.UserID)
	if err != nil {
		return receipt.Confirmation{}, fmt.Errorf("find customer: %w", err)
	}
	if customer == nil {
		return receipt.Confirmation{}, fmt.Errorf("customer %s: %w", booking.UserID, ErrNotFound)
	}

	pkg, err := s.repo.Package.FindByID(ctx, booking.PackageID)
	if err != nil {
		return receipt.Confirmation{}, fmt.Errorf("find package: %w", err)
	}
	if pkg == nil {
		return receipt.Confirmation{}, fmt.Errorf("package %s: %w", booking.PackageID, ErrNotFound)
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return receipt.Confirmation{}, fmt.Errorf("find payments: %w", err)
	}
	summary := SummarizePayments(booking.TotalPrice, payments)

	return receipt.Confirmation{
		BookingNumber:    booking.BookingNumber,
		CustomerName:     customer.Name,
		CustomerEmail:    customer.Email,
		CustomerRole:     string(customer.Role),
		Destination:      pkg.Destination,
		Duration:         pkg.Duration,
		IncludedServices: lo.FromPtr(pkg.IncludedServices),
		TravelDate:       booking.TravelDate,
		Travelers:        booking.NumberOfTravelers,
		Status:           string(booking.Status),
		SpecialRequests:  lo.FromPtr(booking.SpecialRequests),
		Currency:         s.config.DefaultCurrency,
		PricePerPerson:   booking.TotalPrice.Div(decimal.NewFromInt(int64(booking.NumberOfTravelers))).Round(2),
		TotalPrice:       booking.TotalPrice,
		TotalPaid:        summary.TotalPaid,
		IssuedAt:         s.clock(),
	}, nil
}

func (s *bookingService) GetBookingByNumber(ctx context.Context, bookingNumber string) (*response.BookingDetailResponse, error) {
	booking, err := s.repo.Booking.FindByNumber(ctx, bookingNumber)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingNumber, ErrNotFound)
	}

	return s.detail(ctx, booking)
}

func (s *bookingService) GetUserBookings(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, actor.UserID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), req.Page, req.Limit(), total), nil
}

// UpcomingBookings returns the caller's bookings from today on, or everyone's for admins.
func (s *bookingService) UpcomingBookings(ctx context.Context, actor Actor, limit int) ([]response.BookingResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var userID *uuid.UUID
	if !actor.IsAdmin() {
		userID = &actor.UserID
	}

	bookings, err := s.repo.Booking.FindUpcoming(ctx, userID, utils.Today(s.clock()), limit)
	if err != nil {
		return nil, fmt.Errorf("upcoming bookings: %w", err)
	}

	return s.toResponses(ctx, bookings), nil
}

func (s *bookingService) ListBookings(ctx context.Context, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := entity.BookingStatus(status)
	if status != "" && !lo.Contains(entity.BookingStatuses, filter) {
		return nil, invalid("status", "Must be one of: pending, confirmed, cancelled")
	}

	bookings, err := s.repo.Booking.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.repo.Booking.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetStats(ctx context.Context, req *request.StatsRequest) (*response.BookingStatsResponse, error) {
	from, to, err := statsWindow(req)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Booking.Stats(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}

	resp := response.BookingStatsToResponse(stats)
	return &resp, nil
}

func (s *bookingService) MostActiveUsers(ctx context.Context, limit int) ([]response.ActiveUserResponse, error) {
	users, err := s.repo.Booking.MostActiveUsers(ctx, clampLimit(limit, defaultRankingLimit))
	if err != nil {
		return nil, fmt.Errorf("most active users: %w", err)
	}
	return response.ActiveUsersToResponse(users), nil
}

// ==================== HELPER METHODS ====================

func isAvailable(pkg *entity.Package, booked int) bool {
	return pkg.Availability && booked < pkg.MaxTravelers
}

func remainingCapacity(pkg *entity.Package, booked int) int {
	if !pkg.Availability || booked >= pkg.MaxTravelers {
		return 0
	}
	return pkg.MaxTravelers - booked
}

func (s *bookingService) detail(ctx context.Context, booking *entity.Booking) (*response.BookingDetailResponse, error) {
	pkg, err := s.repo.Package.FindByID(ctx, booking.PackageID)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}

	status := response.PaymentStatusToResponse(booking, SummarizePayments(booking.TotalPrice, payments))
	resp := &response.BookingDetailResponse{
		PaymentStatus: &status,
		Payments:      response.PaymentsToResponse(payments),
	}

	destination := ""
	if pkg != nil {
		destination = pkg.Destination
		p := response.PackageToResponse(pkg, nil)
		resp.Package = &p
	}
	resp.BookingResponse = response.BookingToResponse(booking, destination)

	return resp, nil
}

func (s *bookingService) toResponses(ctx context.Context, bookings []*entity.Booking) []response.BookingResponse {
	destinations := make(map[uuid.UUID]string)
	for _, id := range lo.Uniq(lo.Map(bookings, func(b *entity.Booking, _ int) uuid.UUID { return b.PackageID })) {
		destinations[id] = s.destination(ctx, id)
	}

	return lo.Map(bookings, func(b *entity.Booking, _ int) response.BookingResponse {
		return response.BookingToResponse(b, destinations[b.PackageID])
	})
}

func (s *bookingService) destination(ctx context.Context, packageID uuid.UUID) string {
	pkg, err := s.repo.Package.FindByID(ctx, packageID)
	if err != nil || pkg == nil {
		return ""
	}
	return pkg.Destination
}

// statsWindow turns an optional date range into an inclusive created_at window.
func statsWindow(req *request.StatsRequest) (from, to *time.Time, err error) {
	if err := validate(req); err != nil {
		return nil, nil, err
	}

	if req.From != "" {
		f, _ := utils.ParseDate(req.From)
		from = &f
	}
	if req.To != "" {
		t, _ := utils.ParseDate(req.To)
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, invalid("To", "Must not be before From")
	}

	return from, to, nil
}
