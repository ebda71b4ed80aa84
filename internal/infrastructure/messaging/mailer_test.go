package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedPublish struct {
	key     string
	payload any
}

type capturingPublisher struct {
	published []capturedPublish
}

func (p *capturingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.published = append(p.published, capturedPublish{key: routingKey, payload: payload})
	return nil
}

func TestRabbitMailer_Jobs(t *testing.T) {
	pub := &capturingPublisher{}
	m := NewRabbitMailer(pub)

	require.NoError(t, m.SendOTP(context.Background(), "jane@example.com", "signup", "123456"))
	require.NoError(t, m.SendClaimNotice(context.Background(), "owner@example.com", "Новая заявка", "текст"))

	require.Len(t, pub.published, 2)
	assert.Equal(t, RoutingMailOTP, pub.published[0].key)
	otp := pub.published[0].payload.(MailJob)
	assert.Equal(t, "jane@example.com", otp.To)
	assert.Equal(t, "123456", otp.Code)
	assert.Equal(t, "signup", otp.Purpose)

	assert.Equal(t, RoutingMailClaim, pub.published[1].key)
	notice := pub.published[1].payload.(MailJob)
	assert.Equal(t, "Новая заявка", notice.Subject)
	assert.False(t, notice.QueuedAt.IsZero())
}

func TestLogMailerAndNoop(t *testing.T) {
	assert.NoError(t, LogMailer{}.SendOTP(context.Background(), "a@b.cc", "signup", "000000"))
	assert.NoError(t, LogMailer{}.SendClaimNotice(context.Background(), "a@b.cc", "s", "b"))
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), "item.created", nil))
}
