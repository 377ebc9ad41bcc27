package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/data/repository"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func utcDate(t time.Time) time.Time { return utils.Today(t) }

var testBookingConfig = utils.BookingConfig{
	VIPDiscountPercentage:  decimal.NewFromInt(10),
	MaxTravelersPerBooking: 10,
	NumberRetries:          3,
	DefaultCurrency:        "USD",
}

// memStore backs the fake repositories. Each fake embeds the repository
// interface so calling a method the tests do not need panics loudly.
type memStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	users    map[uuid.UUID]*entity.User
	packages map[uuid.UUID]*entity.Package
	bookings map[uuid.UUID]*entity.Booking
	payments map[uuid.UUID]*entity.Payment
	reviews  map[uuid.UUID]*entity.Review
	sessions map[uuid.UUID]*entity.Session

	// lastLimit is the limit passed to the last ranking query.
	lastLimit int

	// bookingCollisions makes the next n booking inserts report a duplicate number.
	bookingCollisions int
}

func newStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*entity.User),
		packages: make(map[uuid.UUID]*entity.Package),
		bookings: make(map[uuid.UUID]*entity.Booking),
		payments: make(map[uuid.UUID]*entity.Payment),
		reviews:  make(map[uuid.UUID]*entity.Review),
		sessions: make(map[uuid.UUID]*entity.Session),
	}
}

func (s *memStore) repo() *repository.Repository {
	return &repository.Repository{
		Locker:  &s.txMu,
		User:    fakeUsers{s: s},
		Session: fakeSessions{s: s},
		Package: fakePackages{s: s},
		Booking: fakeBookings{s: s},
		Payment: fakePayments{s: s},
		Review:  fakeReviews{s: s},
	}
}

func (s *memStore) addUser(role entity.UserRole) *entity.User {
	u := &entity.User{
		Base:     entity.NewBase(testNow),
		Name:     string(role) + " user",
		Email:    uuid.NewString() + "@example.com",
		Role:     role,
		IsActive: true,
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addPackage(price string, maxTravelers int) *entity.Package {
	p := &entity.Package{
		Base:         entity.NewBase(testNow),
		Destination:  "Bali",
		Price:        decimal.RequireFromString(price),
		Duration:     7,
		Availability: true,
		MaxTravelers: maxTravelers,
	}
	s.packages[p.ID] = p
	return p
}

func (s *memStore) addBooking(user *entity.User, pkg *entity.Package, travelDate time.Time, travelers int, status entity.BookingStatus) *entity.Booking {
	b := &entity.Booking{
		Base:              entity.NewBase(testNow),
		BookingNumber:     utils.GenerateBookingNumber(testNow),
		UserID:            user.ID,
		PackageID:         pkg.ID,
		TravelDate:        travelDate,
		NumberOfTravelers: travelers,
		TotalPrice:        pkg.Price.Mul(decimal.NewFromInt(int64(travelers))),
		Status:            status,
	}
	s.bookings[b.ID] = b
	return b
}

func (s *memStore) booking(id uuid.UUID) *entity.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.bookings[id]
	return &cp
}

func (s *memStore) mustUserByEmail(email string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email {
			return id
		}
	}
	panic("no user " + email)
}

// ==================== USERS ====================

type fakeUsers struct {
	repository.UserRepository
	s *memStore
}

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	f.s.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = at
	return nil
}

func (f fakeUsers) CountByRole(_ context.Context) (map[entity.UserRole]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	counts := map[entity.UserRole]int64{entity.RoleClient: 0, entity.RoleVIP: 0, entity.RoleAdmin: 0}
	for _, u := range f.s.users {
		counts[u.Role]++
	}
	return counts, nil
}

// ==================== SESSIONS ====================

type fakeSessions struct {
	repository.SessionRepository
	s *memStore
}

func (f fakeSessions) Create(_ context.Context, session *entity.Session) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *session
	f.s.sessions[session.ID] = &cp
	return nil
}

func (f fakeSessions) FindValidSession(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	session, ok := f.s.sessions[id]
	if !ok || session.RevokedAt != nil {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (f fakeSessions) Revoke(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	session, ok := f.s.sessions[id]
	if !ok || session.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	session.RevokedAt = &now
	return nil
}

func (f fakeSessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	now := time.Now()
	for _, session := range f.s.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			session.RevokedAt = &now
		}
	}
	return nil
}

func (f fakeSessions) RevokeOtherSessions(_ context.Context, userID, keep uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	now := time.Now()
	for id, session := range f.s.sessions {
		if session.UserID == userID && id != keep && session.RevokedAt == nil {
			session.RevokedAt = &now
		}
	}
	return nil
}

// ==================== PACKAGES ====================

type fakePackages struct {
	repository.PackageRepository
	s *memStore
}

func (f fakePackages) FindByID(_ context.Context, id uuid.UUID) (*entity.Package, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.packages[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f fakePackages) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	return f.FindByID(ctx, id)
}

func (f fakePackages) ranked() []*entity.RankedPackage {
	var out []*entity.RankedPackage
	for _, p := range f.s.packages {
		if !p.Availability {
			continue
		}
		item := &entity.RankedPackage{Package: p, Rating: entity.PackageRating{Average: decimal.Zero}}
		sum := 0
		for _, r := range f.s.reviews {
			if r.PackageID == p.ID && r.Approval == entity.ReviewApproved {
				sum += r.Rating
				item.Rating.Count++
			}
		}
		if item.Rating.Count > 0 {
			item.Rating.Average = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(item.Rating.Count)).Round(1)
		}
		for _, b := range f.s.bookings {
			if b.PackageID == p.ID && b.Status != entity.BookingStatusCancelled {
				item.Bookings++
			}
		}
		out = append(out, item)
	}
	return out
}

func (f fakePackages) TopRated(_ context.Context, limit int) ([]*entity.RankedPackage, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := f.ranked()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating.Average.GreaterThan(out[j].Rating.Average) })
	f.s.lastLimit = limit
	return out[:min(limit, len(out))], nil
}

func (f fakePackages) MostBooked(_ context.Context, limit int) ([]*entity.RankedPackage, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := f.ranked()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bookings > out[j].Bookings })
	f.s.lastLimit = limit
	return out[:min(limit, len(out))], nil
}

func (f fakePackages) FindSimilar(_ context.Context, pkg *entity.Package, limit int) ([]*entity.Package, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	low := pkg.Price.Mul(decimal.RequireFromString("0.7"))
	high := pkg.Price.Mul(decimal.RequireFromString("1.3"))
	var out []*entity.Package
	for _, p := range f.s.packages {
		if p.ID == pkg.ID || !p.Availability {
			continue
		}
		if p.Duration < pkg.Duration-3 || p.Duration > pkg.Duration+3 {
			continue
		}
		if p.Price.LessThan(low) || p.Price.GreaterThan(high) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	f.s.lastLimit = limit
	return out[:min(limit, len(out))], nil
}

// ==================== BOOKINGS ====================

type fakeBookings struct {
	repository.BookingRepository
	s *memStore
}

func (f fakeBookings) Create(_ context.Context, b *entity.Booking) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.bookingCollisions > 0 {
		f.s.bookingCollisions--
		return repository.ErrDuplicate
	}
	cp := *b
	f.s.bookings[b.ID] = &cp
	return nil
}

func (f fakeBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	b, ok := f.s.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f fakeBookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return f.FindByID(ctx, id)
}

func (f fakeBookings) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	b, ok := f.s.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	return nil
}

func (f fakeBookings) SumTravelers(_ context.Context, packageID uuid.UUID, travelDate time.Time) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	total := 0
	for _, b := range f.s.bookings {
		if b.PackageID == packageID && b.TravelDate.Equal(travelDate) && b.Status.HoldsCapacity() {
			total += b.NumberOfTravelers
		}
	}
	return total, nil
}

func (f fakeBookings) TravelersByDate(_ context.Context, packageID uuid.UUID, from, to time.Time) (map[string]int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make(map[string]int)
	for _, b := range f.s.bookings {
		if b.PackageID != packageID || !b.Status.HoldsCapacity() {
			continue
		}
		if b.TravelDate.Before(from) || b.TravelDate.After(to) {
			continue
		}
		out[b.TravelDate.Format(utils.DateLayout)] += b.NumberOfTravelers
	}
	return out, nil
}

func (f fakeBookings) HasTraveled(_ context.Context, userID, packageID uuid.UUID, before time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, b := range f.s.bookings {
		if b.UserID == userID && b.PackageID == packageID &&
			b.Status == entity.BookingStatusConfirmed && b.TravelDate.Before(before) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeBookings) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var ids []uuid.UUID
	for id, b := range f.s.bookings {
		if b.Status != entity.BookingStatusCancelled {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f fakeBookings) MostActiveUsers(_ context.Context, limit int) ([]*entity.ActiveUser, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	counts := make(map[uuid.UUID]int64)
	for _, b := range f.s.bookings {
		counts[b.UserID]++
	}
	var out []*entity.ActiveUser
	for id, n := range counts {
		u := f.s.users[id]
		out = append(out, &entity.ActiveUser{UserID: id, Name: u.Name, Email: u.Email, Role: u.Role, Bookings: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bookings > out[j].Bookings })
	f.s.lastLimit = limit
	return out[:min(limit, len(out))], nil
}

// ==================== PAYMENTS ====================

type fakePayments struct {
	repository.PaymentRepository
	s *memStore
}

func (f fakePayments) Create(_ context.Context, p *entity.Payment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.payments {
		if existing.TransactionID == p.TransactionID {
			return repository.ErrDuplicate
		}
	}
	cp := *p
	f.s.payments[p.ID] = &cp
	return nil
}

func (f fakePayments) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f fakePayments) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range f.s.payments {
		if p.BookingID == bookingID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

func (f fakePayments) MarkRefunded(_ context.Context, id uuid.UUID, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.payments[id]
	if !ok || p.Status != entity.PaymentStatusCompleted {
		return repository.ErrNotFound
	}
	p.Status = entity.PaymentStatusRefunded
	p.RefundedAt = &at
	return nil
}

// ==================== REVIEWS ====================

type fakeReviews struct {
	repository.ReviewRepository
	s *memStore
}

func (f fakeReviews) Create(_ context.Context, r *entity.Review) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.reviews {
		if existing.UserID == r.UserID && existing.PackageID == r.PackageID {
			return repository.ErrDuplicate
		}
	}
	cp := *r
	f.s.reviews[r.ID] = &cp
	return nil
}

func (f fakeReviews) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.reviews[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f fakeReviews) Update(_ context.Context, r *entity.Review) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.reviews[r.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *r
	f.s.reviews[r.ID] = &cp
	return nil
}

func (f fakeReviews) SetApproval(_ context.Context, id uuid.UUID, approval entity.ReviewApproval) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Approval = approval
	return nil
}

func (f fakeReviews) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.s.reviews, id)
	return nil
}

// ==================== EVENTS ====================

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, eventName(e))
	}
	return out
}

func testLogger() *zap.Logger { return zap.NewNop() }
