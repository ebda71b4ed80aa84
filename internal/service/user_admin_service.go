package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

var ErrCannotModifySelf = errors.New("нельзя менять собственную учётную запись")

// UserAdminRepository операции над пользователями, доступные администратору.
type UserAdminRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role string) error
	DeleteAllSessions(ctx context.Context, userID uuid.UUID) error
}

// UserAdminService модерация учётных записей.
type UserAdminService struct {
	repo  UserAdminRepository
	cache *CacheService
}

func NewUserAdminService(repo UserAdminRepository, cache *CacheService) *UserAdminService {
	return &UserAdminService{repo: repo, cache: cache}
}

// ListUsers возвращает страницу пользователей с фильтрами.
func (s *UserAdminService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if filter.Role != "" {
		if _, ok := models.ValidRoles[filter.Role]; !ok {
			return nil, 0, fmt.Errorf("user admin: %w: неизвестная роль", ErrInvalidInput)
		}
	}
	if filter.Status != "" {
		if _, ok := models.ValidUserStatuses[filter.Status]; !ok {
			return nil, 0, fmt.Errorf("user admin: %w: неизвестный статус", ErrInvalidInput)
		}
	}
	if err := validation.ValidateSearchQuery(filter.Query); err != nil {
		return nil, 0, fmt.Errorf("user admin: %w: %v", ErrInvalidInput, err)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// ChangeStatus блокирует или разблокирует пользователя. Блокировка отзывает
// все сессии и сразу сбрасывает кешированный статус.
func (s *UserAdminService) ChangeStatus(ctx context.Context, adminID, userID uuid.UUID, status string) (*models.User, error) {
	if adminID == userID {
		return nil, fmt.Errorf("user admin: %w", ErrCannotModifySelf)
	}
	if _, ok := models.ValidUserStatuses[status]; !ok {
		return nil, fmt.Errorf("user admin: %w: неизвестный статус", ErrInvalidInput)
	}

	if err := s.repo.UpdateStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	if status != models.UserStatusActive {
		if err := s.repo.DeleteAllSessions(ctx, userID); err != nil {
			return nil, err
		}
	}
	s.cache.InvalidateUserCache(userID)

	logger.Log.WithFields(logrus.Fields{
		"admin_id": adminID,
		"user_id":  userID,
		"status":   status,
	}).Info("user admin: статус пользователя изменён")

	return s.repo.GetByID(ctx, userID)
}

// ChangeRole меняет роль пользователя. Сессии отзываются, чтобы новые токены
// несли актуальную роль.
func (s *UserAdminService) ChangeRole(ctx context.Context, adminID, userID uuid.UUID, role string) (*models.User, error) {
	if adminID == userID {
		return nil, fmt.Errorf("user admin: %w", ErrCannotModifySelf)
	}
	if _, ok := models.ValidRoles[role]; !ok {
		return nil, fmt.Errorf("user admin: %w: неизвестная роль", ErrInvalidInput)
	}

	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteAllSessions(ctx, userID); err != nil {
		return nil, err
	}
	s.cache.InvalidateUserCache(userID)

	logger.Log.WithFields(logrus.Fields{
		"admin_id": adminID,
		"user_id":  userID,
		"role":     role,
	}).Info("user admin: роль пользователя изменена")

	return s.repo.GetByID(ctx, userID)
}

// CreateAdmin создаёт администратора без OTP. Используется только из CLI.
func (s *UserAdminService) CreateAdmin(ctx context.Context, email, password, displayName string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("user admin: %w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("user admin: %w: %v", ErrInvalidInput, err)
	}
	if displayName == "" {
		displayName = "Администратор"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("user admin: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Email:        validation.NormalizeEmail(email),
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("user admin: %w", ErrEmailRegistered)
		}
		return nil, err
	}
	return user, nil
}

// PromoteByEmail выдаёт существующему пользователю роль admin. Используется только из CLI.
func (s *UserAdminService) PromoteByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return user, nil
	}

	if err := s.repo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteAllSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	s.cache.InvalidateUserCache(user.ID)

	user.Role = models.RoleAdmin
	return user, nil
}
