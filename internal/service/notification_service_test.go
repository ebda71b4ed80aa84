package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/models"
)

type mockNotificationRepository struct {
	created    []*models.Notification
	lastFilter models.NotificationFilter
}

func (m *mockNotificationRepository) Create(_ context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepository) List(_ context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	m.lastFilter = filter
	return nil, nil
}

func (m *mockNotificationRepository) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepository) MarkAllAsRead(_ context.Context, filter models.NotificationFilter) (int64, error) {
	m.lastFilter = filter
	return 2, nil
}

func (m *mockNotificationRepository) CountUnread(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

type claimPayload struct {
	ClaimID uuid.UUID `json:"claim_id"`
}

func (p claimPayload) RelatedClaimID() uuid.UUID { return p.ClaimID }

func TestNotificationService_CreateLinksClaim(t *testing.T) {
	repo := &mockNotificationRepository{}
	svc := NewNotificationService(repo)
	userID, claimID := uuid.New(), uuid.New()

	require.NoError(t, svc.CreateNotification(context.Background(), userID, "claim.updated", claimPayload{ClaimID: claimID}))
	require.NoError(t, svc.CreateNotification(context.Background(), userID, "item.created", map[string]string{"x": "y"}))

	require.Len(t, repo.created, 2)
	first := repo.created[0]
	assert.Equal(t, "claim.updated", first.Event)
	require.NotNil(t, first.ClaimID)
	assert.Equal(t, claimID, *first.ClaimID)

	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Payload, &envelope))
	assert.Equal(t, "claim.updated", envelope.Type)
	assert.Contains(t, string(envelope.Data), claimID.String())

	assert.Nil(t, repo.created[1].ClaimID)
}

func TestNotificationService_ListClampsPage(t *testing.T) {
	repo := &mockNotificationRepository{}
	svc := NewNotificationService(repo)

	_, err := svc.ListNotifications(context.Background(), models.NotificationFilter{UserID: uuid.New(), Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, defaultNotificationLimit, repo.lastFilter.Limit)
	assert.Equal(t, 0, repo.lastFilter.Offset)
}

func TestNotificationService_MarkAllForClaim(t *testing.T) {
	repo := &mockNotificationRepository{}
	svc := NewNotificationService(repo)
	userID, claimID := uuid.New(), uuid.New()

	n, err := svc.MarkAllAsRead(context.Background(), userID, &claimID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, userID, repo.lastFilter.UserID)
	assert.Equal(t, &claimID, repo.lastFilter.ClaimID)
}
