package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification сохранённое событие из WebSocket канала пользователя.
// ClaimID заполнен, если событие относится к заявке.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Event     string          `db:"event" json:"event"`
	ClaimID   *uuid.UUID      `db:"claim_id" json:"claim_id,omitempty"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NotificationFilter параметры выборки уведомлений пользователя.
type NotificationFilter struct {
	UserID     uuid.UUID
	ClaimID    *uuid.UUID
	UnreadOnly bool
	Limit      int
	Offset     int
}
