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
	"travel-agency/pkg/jwt"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientInfo describes where a login came from.
type ClientInfo struct {
	UserAgent string
	IP        string
}

// Principal is an authenticated request: who is calling and through which session.
type Principal struct {
	Actor
	SessionID uuid.UUID
}

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, client ClientInfo) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	Authenticate(ctx context.Context, token string) (*Principal, error)
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

type authService struct {
	repo   *repository.Repository // grouping userRepo & sessionRepo
	tokens *jwt.Service
	clock  clock
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	tokens *jwt.Service,
	clock clock,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		clock:  clock,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, client ClientInfo) (*response.AuthResponse, error) {
	// 1. Validate input
	if err := validate(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}

	// 2. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 3. Create user; the unique index on email decides duplicates
	user := &entity.User{
		Base:         entity.NewBase(s.clock()),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashedPassword,
		Role:         entity.RoleClient,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("email %s: %w", user.Email, ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	// 4. Auto login after register
	return s.startSession(ctx, user, client)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error) {
	// 1. Validate
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Find user
	user, err := s.repo.User.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.log.Warn("User not found for login", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	// 3. Check password
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	// 4. Check if user is active
	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, ErrInactiveAccount
	}

	return s.startSession(ctx, user, client)
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.repo.Session.Revoke(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	s.log.Info("User logged out", zap.String("session_id", sessionID.String()))
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Session.RevokeAllUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.log.Info("All sessions revoked", zap.String("user_id", userID.String()))
	return nil
}

// Authenticate verifies the bearer token, then checks that its session is
// still live and its user still active. The role is read from the user row so
// role changes apply to existing tokens.
func (s *authService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	session, err := s.repo.Session.FindValidSession(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, fmt.Errorf("session revoked or expired: %w", ErrInvalidCredentials)
	}

	user, err := s.repo.User.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", claims.UserID, ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	return &Principal{
		Actor:     Actor{UserID: user.ID, Role: user.Role},
		SessionID: session.ID,
	}, nil
}

func (s *authService) CleanExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repo.Session.CleanExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("clean sessions: %w", err)
	}

	s.log.Info("Expired sessions cleaned", zap.Int64("deleted", n))
	return n, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) startSession(ctx context.Context, user *entity.User, client ClientInfo) (*response.AuthResponse, error) {
	now := s.clock()

	device := utils.DescribeUserAgent(client.UserAgent)
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     user.ID,
		UserAgent:  &device,
		ExpiresAt:  now.Add(s.tokens.Expiry()),
	}
	if client.IP != "" {
		session.IPAddress = &client.IP
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, session.ID, string(user.Role), now)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.repo.User.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("Failed to update last login", zap.Error(err), zap.String("user_id", user.ID.String()))
	} else {
		user.LastLogin = &now
	}

	s.log.Info("Session started",
		zap.String("user_id", user.ID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("device", device))

	resp := response.AuthToResponse(user, token, expiresAt)
	return &resp, nil
}
