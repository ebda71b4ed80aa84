package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

// MatchQuery описание потерянной вещи, для которой ищутся совпадения.
type MatchQuery struct {
	Name                string
	Category            string
	Description         string
	DistinguishingMarks string
	Location            string
	Date                string
}

// Matcher ранжирует найденные вещи по описанию потерянной.
// Возвращает идентификаторы в порядке убывания уверенности, как их вернула модель.
type Matcher interface {
	RankFoundItems(ctx context.Context, query MatchQuery, candidates []*entity.Item) ([]string, error)
}

// ImageStore хранит загруженные изображения и отдаёт публичные ссылки.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType, ext string) (string, error)
	Delete(ctx context.Context, url string) error
}

// EventPublisher публикует доменные события во внешнюю шину.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Notifier доставляет событие пользователю в реальном времени.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// Mailer ставит письма в очередь на отправку.
type Mailer interface {
	SendOTP(ctx context.Context, email, purpose, code string) error
	SendClaimNotice(ctx context.Context, email, subject, body string) error
}

// Cache короткоживущий кэш в памяти процесса.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	// GetOrSet загружает значение при промахе. Результат загрузки, пересёкшейся с Delete,
	// возвращается, но не сохраняется.
	GetOrSet(key string, ttl time.Duration, load func() (any, error)) (any, error)
}
