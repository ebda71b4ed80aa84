package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// AccountChecker сообщает, не заблокирован ли владелец токена.
type AccountChecker interface {
	IsActive(ctx context.Context, userID uuid.UUID) (bool, error)
}

// BearerToken извлекает токен из заголовка Authorization.
func BearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// AuthMiddleware проверяет JWT access токен и статус учётной записи.
func AuthMiddleware(tokens *service.TokenManager, accounts AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		if accounts != nil {
			active, err := accounts.IsActive(c.Request.Context(), userID)
			if err != nil {
				logger.Log.WithError(err).WithField("user_id", userID).Error("auth: не удалось проверить статус аккаунта")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
				return
			}
			if !active {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "аккаунт заблокирован"})
				return
			}
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// OptionalAuth заполняет контекст, если передан валидный токен, и пропускает запрос без него.
func OptionalAuth(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := BearerToken(c); raw != "" {
			if userID, role, err := tokens.ParseAccess(raw); err == nil {
				c.Set(ContextUserIDKey, userID)
				c.Set(ContextRoleKey, role)
			}
		}
		c.Next()
	}
}

// RequireRole пропускает только пользователей с одной из ролей. Ставится после AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
			return
		}
		c.Next()
	}
}
