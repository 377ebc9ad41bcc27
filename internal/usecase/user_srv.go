package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/data/repository"
	"travel-agency/internal/dto/request"
	"travel-agency/internal/dto/response"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	ChangePassword(ctx context.Context, userID, sessionID uuid.UUID, req *request.ChangePasswordRequest) error

	// Admin endpoints
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	UpdateRole(ctx context.Context, actor Actor, userID uuid.UUID, req *request.UpdateRoleRequest) (*response.UserResponse, error)
	SetActive(ctx context.Context, actor Actor, userID uuid.UUID, req *request.SetActiveRequest) (*response.UserResponse, error)
	CountByRole(ctx context.Context) (*response.RoleCountsResponse, error)
}

type userService struct {
	repo  *repository.Repository
	clock clock
	log   *zap.Logger
}

func NewUserService(repo *repository.Repository, clock clock, log *zap.Logger) UserService {
	return &userService{
		repo:  repo,
		clock: clock,
		log:   log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// UpdateProfile changes name, email, image or password. A password change
// requires the current password.
func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.ProfileImage != nil {
		user.ProfileImage = req.ProfileImage
	}
	if req.Password != nil {
		if req.CurrentPassword == nil || !utils.CheckPasswordHash(*req.CurrentPassword, user.PasswordHash) {
			return nil, invalid("CurrentPassword", "Current password is incorrect")
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
	}
	user.UpdatedAt = us.clock()

	if err := us.repo.User.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("email %s: %w", user.Email, ErrConflict)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	us.log.Info("Profile updated", zap.String("user_id", userID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// ChangePassword replaces the password after checking the current one and
// signs out every other session of the user. sessionID stays valid.
func (us *userService) ChangePassword(ctx context.Context, userID, sessionID uuid.UUID, req *request.ChangePasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := us.find(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return invalid("CurrentPassword", "Current password is incorrect")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = us.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.UpdatePassword(ctx, userID, hashed, us.clock()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("user %s: %w", userID, ErrNotFound)
			}
			return fmt.Errorf("update password: %w", err)
		}
		return tx.Session.RevokeOtherSessions(ctx, userID, sessionID)
	})
	if err != nil {
		return err
	}

	us.log.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	users, err := us.repo.User.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := us.repo.User.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	data := make([]response.UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, response.UserToResponse(user))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

// UpdateRole promotes or demotes a user. Admins cannot change their own role.
func (us *userService) UpdateRole(ctx context.Context, actor Actor, userID uuid.UUID, req *request.UpdateRoleRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if actor.UserID == userID {
		return nil, invalid("Role", "Cannot change your own role")
	}

	role := entity.UserRole(req.Role)
	if err := us.repo.User.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	us.log.Info("User role changed",
		zap.String("user_id", userID.String()),
		zap.String("role", req.Role),
		zap.String("by", actor.UserID.String()))

	return us.GetProfile(ctx, userID)
}

// SetActive activates or deactivates an account. Deactivation revokes every
// session of the user.
func (us *userService) SetActive(ctx context.Context, actor Actor, userID uuid.UUID, req *request.SetActiveRequest) (*response.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if actor.UserID == userID && !*req.IsActive {
		return nil, invalid("IsActive", "Cannot deactivate your own account")
	}

	err := us.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.SetActive(ctx, userID, *req.IsActive); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("user %s: %w", userID, ErrNotFound)
			}
			return fmt.Errorf("set active: %w", err)
		}
		if !*req.IsActive {
			return tx.Session.RevokeAllUserSessions(ctx, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	us.log.Info("User activation changed",
		zap.String("user_id", userID.String()),
		zap.Bool("is_active", *req.IsActive),
		zap.String("by", actor.UserID.String()))

	return us.GetProfile(ctx, userID)
}

func (us *userService) CountByRole(ctx context.Context) (*response.RoleCountsResponse, error) {
	counts, err := us.repo.User.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}

	resp := response.RoleCountsToResponse(counts)
	return &resp, nil
}

func (us *userService) find(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user, nil
}
