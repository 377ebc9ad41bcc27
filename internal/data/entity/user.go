package entity

import "time"

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleVIP    UserRole = "vip"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleVIP, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password"`
	Role         UserRole   `db:"role"`
	ProfileImage *string    `db:"profile_image"`
	IsActive     bool       `db:"is_active"`
	LastLogin    *time.Time `db:"last_login"`
}
