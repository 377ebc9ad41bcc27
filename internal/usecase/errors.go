package usecase

import (
	"errors"

	"travel-agency/internal/data/entity"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
)

// Domain errors. Anything else returned by a service is an infrastructure failure.
var (
	ErrNotFound               = errors.New("not found")
	ErrUnavailable            = errors.New("package is not available for the requested date")
	ErrUnauthorized           = errors.New("not allowed to act on this resource")
	ErrAlreadyPaid            = errors.New("booking is already fully paid")
	ErrInvalidBookingState    = errors.New("booking is not in a state that allows this operation")
	ErrInvalidState           = errors.New("payment is not in a state that allows this operation")
	ErrDuplicateBookingNumber = errors.New("could not allocate a unique booking number")
	ErrConflict               = errors.New("resource already exists")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInactiveAccount        = errors.New("account is deactivated")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// CanAccess reports whether the actor owns the resource or is an admin.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
