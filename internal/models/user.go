package models

import (
	"time"

	"github.com/google/uuid"
)

// User учётная запись: обычный пользователь, организация-партнёр или администратор.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	DisplayName  string     `db:"display_name" json:"display_name"`
	Role         string     `db:"role" json:"role"`
	Status       string     `db:"status" json:"status"`
	BusinessName *string    `db:"business_name" json:"business_name,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive сообщает, может ли пользователь входить в систему.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserFilter параметры списка пользователей в админке.
type UserFilter struct {
	Role   string
	Status string
	Query  string
	Limit  int
	Offset int
}
