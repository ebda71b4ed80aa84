package messaging

import (
	"context"
	"time"

	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	RoutingMailOTP   = "mail.otp"
	RoutingMailClaim = "mail.claim"
)

// MailJob задание для внешнего воркера доставки почты.
type MailJob struct {
	To       string    `json:"to"`
	Template string    `json:"template"`
	Subject  string    `json:"subject,omitempty"`
	Body     string    `json:"body,omitempty"`
	Purpose  string    `json:"purpose,omitempty"`
	Code     string    `json:"code,omitempty"`
	QueuedAt time.Time `json:"queued_at"`
}

// RabbitMailer ставит письма в очередь через брокер.
type RabbitMailer struct {
	publisher repository.EventPublisher
}

func NewRabbitMailer(publisher repository.EventPublisher) *RabbitMailer {
	return &RabbitMailer{publisher: publisher}
}

func (m *RabbitMailer) SendOTP(ctx context.Context, email, purpose, code string) error {
	return m.publisher.Publish(ctx, RoutingMailOTP, MailJob{
		To:       email,
		Template: "otp",
		Purpose:  purpose,
		Code:     code,
		QueuedAt: time.Now(),
	})
}

func (m *RabbitMailer) SendClaimNotice(ctx context.Context, email, subject, body string) error {
	return m.publisher.Publish(ctx, RoutingMailClaim, MailJob{
		To:       email,
		Template: "claim_notice",
		Subject:  subject,
		Body:     body,
		QueuedAt: time.Now(),
	})
}

// LogMailer пишет письма в лог. Только для разработки.
type LogMailer struct{}

func (LogMailer) SendOTP(ctx context.Context, email, purpose, code string) error {
	logger.Log.WithFields(logrus.Fields{
		"email":   email,
		"purpose": purpose,
		"code":    code,
	}).Info("mail: одноразовый код")
	return nil
}

func (LogMailer) SendClaimNotice(ctx context.Context, email, subject, body string) error {
	logger.Log.WithFields(logrus.Fields{
		"email":   email,
		"subject": subject,
	}).Info("mail: уведомление по заявке")
	return nil
}
