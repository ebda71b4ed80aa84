package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	"github.com/ignatzorin/lostfound-backend/internal/models"
)

// Извлечение параметров общее с маршрутами учётных записей, отличается только формат ответа.

func getUserID(c *gin.Context) (uuid.UUID, error) {
	return common.CurrentUserID(c)
}

// optionalUserID возвращает nil для анонимного запроса.
func optionalUserID(c *gin.Context) *uuid.UUID {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		return nil
	}
	return &userID
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(middleware.ContextRoleKey) == models.RoleAdmin
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	return common.ParseIntQuery(c, key, fallback)
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := common.ParseUUIDParam(c, "id")
	return id, err == nil
}
