package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/jmoiron/sqlx"
)

type MessageRepositoryAdapter struct {
	db *sqlx.DB
}

func NewMessageRepositoryAdapter(db *sqlx.DB) *MessageRepositoryAdapter {
	return &MessageRepositoryAdapter{db: db}
}

// CreateIfChatOpen проверяет статус заявки в момент записи, а не по состоянию клиента.
func (r *MessageRepositoryAdapter) CreateIfChatOpen(ctx context.Context, msg *entity.Message) error {
	query := `
		INSERT INTO messages (id, chat_id, sender_id, text, created_at)
		SELECT $1, c.id, $3, $4, $5
		FROM claims c
		WHERE c.id = $2 AND c.status = 'accepted'
	`
	result, err := r.db.ExecContext(ctx, query, msg.ID, msg.ChatID, msg.SenderID, msg.Text, msg.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать сообщение")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат вставки")
	}
	if rows == 0 {
		return apperror.ErrChatLocked
	}
	return nil
}

func (r *MessageRepositoryAdapter) FindByChatID(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	var rows []messageRow
	query := `SELECT id, chat_id, sender_id, text, created_at
		FROM messages WHERE chat_id = $1 ORDER BY created_at ASC, id LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, chatID, limit, offset); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщения")
	}
	result := make([]*entity.Message, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

type messageRow struct {
	ID        uuid.UUID `db:"id"`
	ChatID    uuid.UUID `db:"chat_id"`
	SenderID  uuid.UUID `db:"sender_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

func (m *messageRow) toEntity() *entity.Message {
	return &entity.Message{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}
