package entity

import (
	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
)

// Account краткие сведения о пользователе, нужные доменному слою.
type Account struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	Role         valueobject.Role
	Status       valueobject.UserStatus
	BusinessName *string
}

func (a *Account) IsPartner() bool {
	return a.Role == valueobject.RolePartner
}

func (a *Account) IsAdmin() bool {
	return a.Role == valueobject.RoleAdmin
}
