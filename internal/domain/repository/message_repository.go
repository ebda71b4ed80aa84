package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type MessageRepository interface {
	// CreateIfChatOpen вставляет сообщение, только если заявка чата в статусе accepted.
	CreateIfChatOpen(ctx context.Context, msg *entity.Message) error
	FindByChatID(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*entity.Message, error)
}
