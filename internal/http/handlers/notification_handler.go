package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// NotificationHandler отдаёт историю событий пользователя.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications обрабатывает GET /notifications?unread_only=true&claim_id=...
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	claimID, ok := claimIDQuery(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	notifications, err := h.notifications.ListNotifications(c.Request.Context(), models.NotificationFilter{
		UserID:     userID,
		ClaimID:    claimID,
		UnreadOnly: c.Query("unread_only") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkAsRead обрабатывает POST /notifications/:id/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор уведомления")
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllAsRead обрабатывает POST /notifications/read-all. С claim_id
// помечаются только уведомления этой заявки.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	claimID, ok := claimIDQuery(c)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllAsRead(c.Request.Context(), userID, claimID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// CountUnread обрабатывает GET /notifications/unread-count.
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func claimIDQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("claim_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		common.RespondBadRequest(c, "неверный claim_id")
		return nil, false
	}
	return &id, true
}
