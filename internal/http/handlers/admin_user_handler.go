package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// AdminUserHandler модерация учётных записей.
type AdminUserHandler struct {
	users *service.UserAdminService
}

func NewAdminUserHandler(users *service.UserAdminService) *AdminUserHandler {
	return &AdminUserHandler{users: users}
}

// ListUsers обрабатывает GET /admin/users?role&status&q.
func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	users, total, err := h.users.ListUsers(c.Request.Context(), models.UserFilter{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ChangeStatus обрабатывает PATCH /admin/users/:id/status.
func (h *AdminUserHandler) ChangeStatus(c *gin.Context) {
	adminID, userID, ok := adminTarget(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "статус обязателен")
		return
	}

	user, err := h.users.ChangeStatus(c.Request.Context(), adminID, userID, req.Status)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangeRole обрабатывает PATCH /admin/users/:id/role.
func (h *AdminUserHandler) ChangeRole(c *gin.Context) {
	adminID, userID, ok := adminTarget(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "роль обязательна")
		return
	}

	user, err := h.users.ChangeRole(c.Request.Context(), adminID, userID, req.Role)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func adminTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return uuid.Nil, uuid.Nil, false
	}

	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор пользователя")
		return uuid.Nil, uuid.Nil, false
	}

	return adminID, userID, true
}
