package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingFixture(store *memStore) (BookingService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewBookingService(store.repo(), testBookingConfig, pub, fixedClock, testLogger()), pub
}

func bookingRequest(pkg *entity.Package, date string, travelers int) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		PackageID:         pkg.ID.String(),
		TravelDate:        date,
		NumberOfTravelers: travelers,
	}
}

func actorOf(u *entity.User) Actor { return Actor{UserID: u.ID, Role: u.Role} }

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("computes total and starts pending", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("500", 10)
		svc, pub := newBookingFixture(store)

		resp, err := svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 2))
		require.NoError(t, err)

		assert.Equal(t, entity.BookingStatusPending, resp.Status)
		assert.Equal(t, "1000.00", resp.TotalPrice.StringFixed(2))
		assert.Equal(t, "Bali", resp.Destination)
		assert.Equal(t, "2026-06-01", resp.TravelDate)
		assert.Regexp(t, `^BK-\d+-[A-Z0-9]{8}$`, resp.BookingNumber)
		assert.False(t, resp.Priority)
		assert.Equal(t, []string{"BookingCreated"}, pub.names())
	})

	t.Run("vip bookings get priority", func(t *testing.T) {
		store := newStore()
		vip := store.addUser(entity.RoleVIP)
		pkg := store.addPackage("500", 10)
		svc, _ := newBookingFixture(store)

		resp, err := svc.CreateBooking(ctx, actorOf(vip), bookingRequest(pkg, "2026-06-01", 1))
		require.NoError(t, err)
		assert.True(t, resp.Priority)
	})

	t.Run("free package is confirmed immediately", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("0", 10)
		svc, _ := newBookingFixture(store)

		resp, err := svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 3))
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
	})

	t.Run("capacity is exhausted", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("100", 5)
		svc, _ := newBookingFixture(store)

		_, err := svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 4))
		require.NoError(t, err)

		_, err = svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 2))
		require.ErrorIs(t, err, ErrUnavailable)

		// another date is unaffected
		_, err = svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-02", 5))
		require.NoError(t, err)
	})

	t.Run("cancelled bookings release capacity", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("100", 5)
		svc, _ := newBookingFixture(store)

		first, err := svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 5))
		require.NoError(t, err)

		_, err = svc.CancelBooking(ctx, actorOf(user), uuid.MustParse(first.ID))
		require.NoError(t, err)

		_, err = svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 5))
		require.NoError(t, err)
	})

	t.Run("disabled package is unavailable", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("100", 5)
		pkg.Availability = false
		svc, _ := newBookingFixture(store)

		_, err := svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 1))
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("unknown package", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		svc, _ := newBookingFixture(store)

		req := &request.CreateBookingRequest{PackageID: uuid.NewString(), TravelDate: "2026-06-01", NumberOfTravelers: 1}
		_, err := svc.CreateBooking(ctx, actorOf(user), req)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("100", 50)
		svc, _ := newBookingFixture(store)

		cases := map[string]*request.CreateBookingRequest{
			"too many travelers": bookingRequest(pkg, "2026-06-01", 11),
			"zero travelers":     bookingRequest(pkg, "2026-06-01", 0),
			"past date":          bookingRequest(pkg, "2026-02-28", 1),
			"bad date":           bookingRequest(pkg, "01/06/2026", 1),
		}
		for name, req := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.CreateBooking(ctx, actorOf(user), req)
				require.ErrorIs(t, err, ErrValidation)
			})
		}
	})

	t.Run("booking number collision is retried", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("100", 5)
		store.bookingCollisions = 2
		svc, _ := newBookingFixture(store)

		_, err := svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 1))
		require.NoError(t, err)
		assert.Len(t, store.bookings, 1)
	})

	t.Run("collision retries are bounded", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("100", 5)
		store.bookingCollisions = testBookingConfig.NumberRetries
		svc, _ := newBookingFixture(store)

		_, err := svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 1))
		require.ErrorIs(t, err, ErrDuplicateBookingNumber)
		assert.Empty(t, store.bookings)
	})
}

func TestConcurrentBookingsForLastSlot(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pkg := store.addPackage("100", 5)
	svc, _ := newBookingFixture(store)

	const contenders = 8
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		succeeded   int
		unavailable int
	)
	users := make([]*entity.User, contenders)
	for i := range users {
		users[i] = store.addUser(entity.RoleClient)
	}

	for _, user := range users {
		user := user
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(ctx, actorOf(user), bookingRequest(pkg, "2026-06-01", 5))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrUnavailable):
				unavailable++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, contenders-1, unavailable)
	assert.Len(t, store.bookings, 1)

	resp, err := svc.CheckAvailability(ctx, pkg.ID, "2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, 5, resp.BookedTravelers)
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	owner := store.addUser(entity.RoleClient)
	other := store.addUser(entity.RoleClient)
	admin := store.addUser(entity.RoleAdmin)
	pkg := store.addPackage("100", 10)
	date := testNow.AddDate(0, 1, 0)
	svc, pub := newBookingFixture(store)

	t.Run("other users are refused", func(t *testing.T) {
		b := store.addBooking(owner, pkg, date, 1, entity.BookingStatusPending)
		_, err := svc.CancelBooking(ctx, actorOf(other), b.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, entity.BookingStatusPending, store.booking(b.ID).Status)
	})

	t.Run("owner cancels confirmed booking", func(t *testing.T) {
		b := store.addBooking(owner, pkg, date, 1, entity.BookingStatusConfirmed)
		resp, err := svc.CancelBooking(ctx, actorOf(owner), b.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusCancelled, resp.Status)
		assert.Contains(t, pub.names(), "BookingStatusChanged")
	})

	t.Run("admin cancels any booking", func(t *testing.T) {
		b := store.addBooking(owner, pkg, date, 1, entity.BookingStatusPending)
		_, err := svc.CancelBooking(ctx, actorOf(admin), b.ID)
		require.NoError(t, err)
	})

	t.Run("cancelled booking cannot be cancelled again", func(t *testing.T) {
		b := store.addBooking(owner, pkg, date, 1, entity.BookingStatusCancelled)
		_, err := svc.CancelBooking(ctx, actorOf(owner), b.ID)
		require.ErrorIs(t, err, ErrInvalidBookingState)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, actorOf(owner), uuid.New())
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	user := store.addUser(entity.RoleClient)
	pkg := store.addPackage("100", 4)
	full := testNow.AddDate(0, 0, 3)
	store.addBooking(user, pkg, utcDate(full), 4, entity.BookingStatusPending)
	store.addBooking(user, pkg, utcDate(full.AddDate(0, 0, 1)), 4, entity.BookingStatusCancelled)
	svc, _ := newBookingFixture(store)

	t.Run("check", func(t *testing.T) {
		resp, err := svc.CheckAvailability(ctx, pkg.ID, "2026-03-04")
		require.NoError(t, err)
		assert.False(t, resp.Available)
		assert.Equal(t, 4, resp.BookedTravelers)
		assert.Equal(t, 0, resp.RemainingCapacity)

		resp, err = svc.CheckAvailability(ctx, pkg.ID, "2026-03-05")
		require.NoError(t, err)
		assert.True(t, resp.Available)
		assert.Equal(t, 4, resp.RemainingCapacity)
	})

	t.Run("available dates skip full and past days", func(t *testing.T) {
		resp, err := svc.AvailableDates(ctx, pkg.ID, &request.AvailableDatesRequest{
			StartDate: "2026-02-27",
			EndDate:   "2026-03-06",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-05", "2026-03-06"}, resp.Dates)
	})

	t.Run("range is bounded", func(t *testing.T) {
		_, err := svc.AvailableDates(ctx, pkg.ID, &request.AvailableDatesRequest{
			StartDate: "2026-03-01",
			EndDate:   "2027-03-02",
		})
		require.ErrorIs(t, err, ErrValidation)

		_, err = svc.AvailableDates(ctx, pkg.ID, &request.AvailableDatesRequest{
			StartDate: "2026-03-05",
			EndDate:   "2026-03-01",
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown package", func(t *testing.T) {
		_, err := svc.CheckAvailability(ctx, uuid.New(), "2026-03-04")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestHasTraveled(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	user := store.addUser(entity.RoleClient)
	pkg := store.addPackage("100", 10)
	svc, _ := newBookingFixture(store)

	store.addBooking(user, pkg, utcDate(testNow), 1, entity.BookingStatusConfirmed)
	traveled, err := svc.HasTraveled(ctx, user.ID, pkg.ID)
	require.NoError(t, err)
	assert.False(t, traveled, "travel date must be strictly before today")

	store.addBooking(user, pkg, utcDate(testNow.AddDate(0, 0, -10)), 1, entity.BookingStatusConfirmed)
	traveled, err = svc.HasTraveled(ctx, user.ID, pkg.ID)
	require.NoError(t, err)
	assert.True(t, traveled)
}

func TestMostActiveUsers(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pkg := store.addPackage("100", 50)
	svc, _ := newBookingFixture(store)
	travel := utcDate(testNow).AddDate(0, 1, 0)

	frequent := store.addUser(entity.RoleVIP)
	occasional := store.addUser(entity.RoleClient)
	store.addUser(entity.RoleClient)

	store.addBooking(frequent, pkg, travel, 1, entity.BookingStatusConfirmed)
	store.addBooking(frequent, pkg, travel, 1, entity.BookingStatusPending)
	store.addBooking(frequent, pkg, travel, 1, entity.BookingStatusCancelled)
	store.addBooking(occasional, pkg, travel, 3, entity.BookingStatusConfirmed)

	users, err := svc.MostActiveUsers(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultRankingLimit, store.lastLimit)
	require.Len(t, users, 2, "users without bookings are not ranked")

	assert.Equal(t, frequent.ID.String(), users[0].UserID)
	assert.Equal(t, "vip", users[0].Role)
	assert.Equal(t, int64(3), users[0].BookingCount, "cancelled bookings still count")
	assert.Equal(t, occasional.ID.String(), users[1].UserID)
	assert.Equal(t, int64(1), users[1].BookingCount)
}

func TestBookingDocuments(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	owner := store.addUser(entity.RoleClient)
	stranger := store.addUser(entity.RoleClient)
	admin := store.addUser(entity.RoleAdmin)
	pkg := store.addPackage("450", 10)
	svc, _ := newBookingFixture(store)

	booking := store.addBooking(owner, pkg, utcDate(testNow).AddDate(0, 1, 0), 2, entity.BookingStatusPending)

	t.Run("owner downloads the confirmation", func(t *testing.T) {
		body, name, err := svc.RenderConfirmation(ctx, actorOf(owner), booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.BookingNumber+".pdf", name)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	})

	t.Run("admin downloads the itinerary", func(t *testing.T) {
		body, name, err := svc.RenderItinerary(ctx, actorOf(admin), booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.BookingNumber+"-itinerary.pdf", name)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	})

	t.Run("other users are refused", func(t *testing.T) {
		_, _, err := svc.RenderConfirmation(ctx, actorOf(stranger), booking.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("cancelled bookings have no itinerary", func(t *testing.T) {
		cancelled := store.addBooking(owner, pkg, utcDate(testNow).AddDate(0, 1, 0), 1, entity.BookingStatusCancelled)
		_, _, err := svc.RenderItinerary(ctx, actorOf(owner), cancelled.ID)
		require.ErrorIs(t, err, ErrInvalidBookingState)

		_, _, err = svc.RenderConfirmation(ctx, actorOf(owner), cancelled.ID)
		require.NoError(t, err, "the confirmation still documents the cancellation")
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, _, err := svc.RenderConfirmation(ctx, actorOf(owner), uuid.New())
		require.ErrorIs(t, err, ErrNotFound)
	})
}
