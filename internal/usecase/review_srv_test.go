package usecase

import (
	"context"
	"testing"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/dto/request"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewRequest(pkg *entity.Package, rating int) *request.CreateReviewRequest {
	return &request.CreateReviewRequest{
		PackageID: pkg.ID.String(),
		Rating:    rating,
		Comment:   "  Great beaches and a friendly guide  ",
	}
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a completed trip", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("100", 10)
		// future and pending bookings do not count
		store.addBooking(user, pkg, utcDate(testNow.AddDate(0, 0, 5)), 1, entity.BookingStatusConfirmed)
		store.addBooking(user, pkg, utcDate(testNow.AddDate(0, 0, -5)), 1, entity.BookingStatusPending)
		svc := NewReviewService(store.repo(), fixedClock, testLogger())

		_, err := svc.CreateReview(ctx, actorOf(user), reviewRequest(pkg, 5))
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.Empty(t, store.reviews)
	})

	t.Run("traveler review starts pending", func(t *testing.T) {
		store := newStore()
		user := store.addUser(entity.RoleClient)
		pkg := store.addPackage("100", 10)
		store.addBooking(user, pkg, utcDate(testNow.AddDate(0, 0, -5)), 1, entity.BookingStatusConfirmed)
		svc := NewReviewService(store.repo(), fixedClock, testLogger())

		resp, err := svc.CreateReview(ctx, actorOf(user), reviewRequest(pkg, 4))
		require.NoError(t, err)
		assert.Equal(t, entity.ReviewPending, resp.Approval)
		assert.Equal(t, "Great beaches and a friendly guide", resp.Comment)
		assert.Equal(t, 4, resp.Rating)

		_, err = svc.CreateReview(ctx, actorOf(user), reviewRequest(pkg, 2))
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("admins skip the travel check", func(t *testing.T) {
		store := newStore()
		admin := store.addUser(entity.RoleAdmin)
		pkg := store.addPackage("100", 10)
		svc := NewReviewService(store.repo(), fixedClock, testLogger())

		_, err := svc.CreateReview(ctx, actorOf(admin), reviewRequest(pkg, 5))
		require.NoError(t, err)
	})

	t.Run("rating out of range", func(t *testing.T) {
		store := newStore()
		admin := store.addUser(entity.RoleAdmin)
		pkg := store.addPackage("100", 10)
		svc := NewReviewService(store.repo(), fixedClock, testLogger())

		_, err := svc.CreateReview(ctx, actorOf(admin), reviewRequest(pkg, 6))
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown package", func(t *testing.T) {
		store := newStore()
		admin := store.addUser(entity.RoleAdmin)
		svc := NewReviewService(store.repo(), fixedClock, testLogger())

		req := &request.CreateReviewRequest{PackageID: uuid.NewString(), Rating: 3, Comment: "fine"}
		_, err := svc.CreateReview(ctx, actorOf(admin), req)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReviewLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	author := store.addUser(entity.RoleClient)
	other := store.addUser(entity.RoleClient)
	pkg := store.addPackage("100", 10)
	store.addBooking(author, pkg, utcDate(testNow.AddDate(0, -1, 0)), 2, entity.BookingStatusConfirmed)
	svc := NewReviewService(store.repo(), fixedClock, testLogger())

	created, err := svc.CreateReview(ctx, actorOf(author), reviewRequest(pkg, 3))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	approved, err := svc.ApproveReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.ReviewApproved, approved.Approval)

	t.Run("only the author may edit", func(t *testing.T) {
		_, err := svc.UpdateReview(ctx, actorOf(other), id, &request.UpdateReviewRequest{Rating: lo.ToPtr(1)})
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("edit goes back to moderation", func(t *testing.T) {
		resp, err := svc.UpdateReview(ctx, actorOf(author), id, &request.UpdateReviewRequest{Rating: lo.ToPtr(5)})
		require.NoError(t, err)
		assert.Equal(t, 5, resp.Rating)
		assert.Equal(t, entity.ReviewPending, resp.Approval)
		assert.Equal(t, created.Comment, resp.Comment)
	})

	t.Run("reject", func(t *testing.T) {
		resp, err := svc.RejectReview(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.ReviewRejected, resp.Approval)
	})

	t.Run("moderating unknown review", func(t *testing.T) {
		_, err := svc.ApproveReview(ctx, uuid.New())
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.ErrorIs(t, svc.DeleteReview(ctx, actorOf(other), id), ErrUnauthorized)
		require.NoError(t, svc.DeleteReview(ctx, actorOf(author), id))
		require.ErrorIs(t, svc.DeleteReview(ctx, actorOf(author), id), ErrNotFound)
	})
}
