package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-backend/internal/models"
)

// ErrNotificationNotFound возвращается, когда уведомление не найдено.
var ErrNotificationNotFound = errors.New("notification not found")

const notificationColumns = `id, user_id, event, claim_id, payload, is_read, created_at`

// NotificationRepository хранит уведомления в таблице notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, event, claim_id, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, n.UserID, n.Event, n.ClaimID, n.Payload).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt); err != nil {
		return fmt.Errorf("notification repository: create %w", err)
	}
	return nil
}

// List возвращает уведомления по фильтру, новые первыми.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	where, args := notificationWhere(filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM notifications WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		notificationColumns, where, len(args)-1, len(args),
	)

	notifications := []models.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("notification repository: list %w", err)
	}
	return notifications, nil
}

// MarkAsRead помечает одно уведомление. Чужое уведомление не находится.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("notification repository: mark as read %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("notification repository: mark as read %w", err)
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead помечает прочитанными все уведомления по фильтру и возвращает их число.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	filter.UnreadOnly = true
	where, args := notificationWhere(filter)
	result, err := r.db.ExecContext(ctx, "UPDATE notifications SET is_read = TRUE WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("notification repository: mark all as read %w", err)
	}
	return result.RowsAffected()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID); err != nil {
		return 0, fmt.Errorf("notification repository: count unread %w", err)
	}
	return count, nil
}

func notificationWhere(filter models.NotificationFilter) (string, []interface{}) {
	conds := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}
	if filter.ClaimID != nil {
		args = append(args, *filter.ClaimID)
		conds = append(conds, fmt.Sprintf("claim_id = $%d", len(args)))
	}
	if filter.UnreadOnly {
		conds = append(conds, "NOT is_read")
	}
	return strings.Join(conds, " AND "), args
}
