package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

const accountStatusTTL = 30 * time.Second

// UserLookup читает учётную запись по идентификатору.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AccountGuard проверяет, что владелец токена не заблокирован. Статус кешируется
// ненадолго; смена статуса администратором сбрасывает кеш сразу.
type AccountGuard struct {
	users UserLookup
	cache *CacheService
}

func NewAccountGuard(users UserLookup, cache *CacheService) *AccountGuard {
	return &AccountGuard{users: users, cache: cache}
}

// IsActive возвращает false для заблокированных и удалённых учётных записей.
func (g *AccountGuard) IsActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	status, err := g.cache.GetOrSet(UserStatusCacheKey(userID), accountStatusTTL, func() (interface{}, error) {
		user, err := g.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return "", nil
			}
			return nil, err
		}
		return user.Status, nil
	})
	if err != nil {
		return false, err
	}
	return status == models.UserStatusActive, nil
}
