package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/models"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationRepository хранилище уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, filter models.NotificationFilter) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// claimScoped реализуют события, относящиеся к конкретной заявке.
type claimScoped interface {
	RelatedClaimID() uuid.UUID
}

// NotificationService хранит историю событий, отправленных пользователю по WebSocket,
// чтобы клиент мог дочитать пропущенное после переподключения.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotification сохраняет событие в том же конверте {type, data}, что уходит в сокет.
// Сигнатура совпадает с ws.NotificationSaver.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{"type": event, "data": data})
	if err != nil {
		return fmt.Errorf("notification service: marshal payload %w", err)
	}

	n := &models.Notification{UserID: userID, Event: event, Payload: payload}
	if scoped, ok := data.(claimScoped); ok {
		claimID := scoped.RelatedClaimID()
		n.ClaimID = &claimID
	}
	return s.repo.Create(ctx, n)
}

// ListNotifications возвращает страницу уведомлений пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	if filter.Limit <= 0 || filter.Limit > maxNotificationLimit {
		filter.Limit = defaultNotificationLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead помечает прочитанными все уведомления или только уведомления одной заявки.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID, claimID *uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, models.NotificationFilter{UserID: userID, ClaimID: claimID})
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
