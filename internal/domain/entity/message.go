package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	SenderID  uuid.UUID
	Text      string
	CreatedAt time.Time
}

func NewMessage(chatID, senderID uuid.UUID, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if err := validation.ValidateMessageContent(text); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return &Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IsOwnedBy(userID uuid.UUID) bool {
	return m.SenderID == userID
}
