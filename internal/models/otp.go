package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPCode одноразовый код подтверждения. Сам код хранится только в виде bcrypt-хеша.
type OTPCode struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	Purpose   string    `db:"purpose"`
	CodeHash  string    `db:"code_hash"`
	Attempts  int       `db:"attempts"`
	Used      bool      `db:"used"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
