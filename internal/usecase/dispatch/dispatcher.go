package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/goroutine"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/sirupsen/logrus"
)

const sideEffectTimeout = 10 * time.Second

// Routing keys доменных событий и типы WebSocket событий.
const (
	EventItemCreated    = "item.created"
	EventClaimSubmitted = "claim.submitted"
	EventClaimAccepted  = "claim.accepted"
	EventClaimRejected  = "claim.rejected"
	EventClaimResolving = "claim.resolving"
	EventClaimResolved  = "claim.resolved"

	WSClaimUpdated = "claim.updated"
	WSMessageNew   = "message.new"
)

// ClaimEvent полезная нагрузка событий по заявкам.
type ClaimEvent struct {
	ClaimID     uuid.UUID `json:"claim_id"`
	ItemID      uuid.UUID `json:"item_id"`
	ItemOwnerID uuid.UUID `json:"item_owner_id"`
	ClaimantID  uuid.UUID `json:"claimant_id"`
	Status      string    `json:"status"`
	ChatID      *string   `json:"chat_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// RelatedClaimID привязывает сохранённое уведомление к заявке.
func (e ClaimEvent) RelatedClaimID() uuid.UUID { return e.ClaimID }

func NewClaimEvent(c *entity.Claim) ClaimEvent {
	ev := ClaimEvent{
		ClaimID:     c.ID,
		ItemID:      c.ItemID,
		ItemOwnerID: c.ItemOwnerID,
		ClaimantID:  c.ClaimantUserID,
		Status:      string(c.Status),
		OccurredAt:  c.UpdatedAt,
	}
	if c.ChatID != nil {
		id := c.ChatID.String()
		ev.ChatID = &id
	}
	return ev
}

// ItemEvent полезная нагрузка item.created.
type ItemEvent struct {
	ItemID    uuid.UUID `json:"item_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageEvent полезная нагрузка message.new.
type MessageEvent struct {
	ID        uuid.UUID `json:"id"`
	ClaimID   uuid.UUID `json:"claim_id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (e MessageEvent) RelatedClaimID() uuid.UUID { return e.ClaimID }

// Dispatcher выполняет побочные эффекты операций в фоне: WebSocket, шина событий, почта.
// Ошибки только логируются и никогда не возвращаются вызывающему.
// Любая зависимость может быть nil, тогда соответствующий канал пропускается.
type Dispatcher struct {
	notifier  repository.Notifier
	publisher repository.EventPublisher
	mailer    repository.Mailer
	users     repository.UserDirectory
	tasks     *goroutine.Tracker
	run       func(task string, fn func())

	// очереди WebSocket событий по пользователям; ключ есть, пока очередь разбирается
	pushMu sync.Mutex
	pushes map[uuid.UUID][]push
}

type push struct {
	event string
	data  any
}

func New(notifier repository.Notifier, publisher repository.EventPublisher, mailer repository.Mailer, users repository.UserDirectory) *Dispatcher {
	d := &Dispatcher{
		notifier:  notifier,
		publisher: publisher,
		mailer:    mailer,
		users:     users,
		pushes:    make(map[uuid.UUID][]push),
	}
	d.tasks = goroutine.NewTracker(nil)
	d.run = d.tasks.Go
	return d
}

// Synchronous выполняет эффекты в вызывающей горутине. Используется в тестах и CLI.
func (d *Dispatcher) Synchronous() *Dispatcher {
	d.run = func(_ string, fn func()) { fn() }
	return d
}

// Drain ждёт фоновые эффекты, запущенные до остановки сервера.
func (d *Dispatcher) Drain(ctx context.Context) error {
	if d == nil || d.tasks == nil {
		return nil
	}
	return d.tasks.Wait(ctx)
}

func (d *Dispatcher) Publish(routingKey string, payload any) {
	if d == nil || d.publisher == nil {
		return
	}
	d.run("publish", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := d.publisher.Publish(ctx, routingKey, payload); err != nil {
			logger.Log.WithError(err).WithField("routing_key", routingKey).Warn("dispatch: не удалось опубликовать событие")
		}
	})
}

// Notify отправляет событие пользователю. События одному пользователю доставляются
// в порядке вызовов: на каждого получателя работает не больше одной горутины.
func (d *Dispatcher) Notify(userID uuid.UUID, event string, data any) {
	if d == nil || d.notifier == nil {
		return
	}

	d.pushMu.Lock()
	queue, active := d.pushes[userID]
	d.pushes[userID] = append(queue, push{event: event, data: data})
	d.pushMu.Unlock()
	if active {
		return
	}
	d.run("ws", func() { d.deliver(userID) })
}

func (d *Dispatcher) deliver(userID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			d.pushMu.Lock()
			delete(d.pushes, userID)
			d.pushMu.Unlock()
			panic(r)
		}
	}()

	for {
		d.pushMu.Lock()
		queue := d.pushes[userID]
		if len(queue) == 0 {
			delete(d.pushes, userID)
			d.pushMu.Unlock()
			return
		}
		next := queue[0]
		queue[0] = push{}
		d.pushes[userID] = queue[1:]
		d.pushMu.Unlock()

		if err := d.notifier.BroadcastToUser(userID, next.event, next.data); err != nil {
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"event":   next.event,
			}).Warn("dispatch: не удалось отправить уведомление")
		}
	}
}

// MailUser ставит письмо пользователю, адрес берётся из справочника пользователей.
func (d *Dispatcher) MailUser(userID uuid.UUID, subject, body string) {
	if d == nil || d.mailer == nil || d.users == nil {
		return
	}
	d.run("mail", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		account, err := d.users.FindAccount(ctx, userID)
		if err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("dispatch: получатель письма не найден")
			return
		}
		d.sendMail(ctx, account.Email, subject, body)
	})
}

func (d *Dispatcher) Mail(email, subject, body string) {
	if d == nil || d.mailer == nil {
		return
	}
	d.run("mail", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		d.sendMail(ctx, email, subject, body)
	})
}

func (d *Dispatcher) sendMail(ctx context.Context, email, subject, body string) {
	if err := d.mailer.SendClaimNotice(ctx, email, subject, body); err != nil {
		logger.Log.WithError(err).WithField("subject", subject).Warn("dispatch: не удалось поставить письмо в очередь")
	}
}

// ClaimChanged рассылает изменение статуса заявки обоим участникам и в шину.
func (d *Dispatcher) ClaimChanged(routingKey string, c *entity.Claim) {
	ev := NewClaimEvent(c)
	d.Notify(c.ItemOwnerID, WSClaimUpdated, ev)
	d.Notify(c.ClaimantUserID, WSClaimUpdated, ev)
	d.Publish(routingKey, ev)
}
