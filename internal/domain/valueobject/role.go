package valueobject

import "github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"

type Role string

const (
	RoleUser    Role = "user"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePartner, RoleAdmin:
		return true
	}
	return false
}

func NewRole(v string) (Role, error) {
	r := Role(v)
	if !r.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "роль должна быть user, partner или admin")
	}
	return r, nil
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusBanned:
		return true
	}
	return false
}

func NewUserStatus(v string) (UserStatus, error) {
	s := UserStatus(v)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "статус должен быть active, suspended или banned")
	}
	return s, nil
}
