package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// MaintenanceReader читает текущее состояние режима обслуживания.
type MaintenanceReader interface {
	Execute(ctx context.Context) (*entity.MaintenanceMode, error)
}

// пути, доступные во время работ: статус и вход администратора
var maintenanceExempt = map[string]struct{}{
	"/api/maintenance":  {},
	"/api/auth/login":   {},
	"/api/auth/refresh": {},
}

// MaintenanceMiddleware отвечает 503 на запросы к /api, пока включён режим
// обслуживания. Администраторы проходят.
func MaintenanceMiddleware(reader MaintenanceReader, tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api/") {
			c.Next()
			return
		}
		if _, ok := maintenanceExempt[path]; ok {
			c.Next()
			return
		}

		mode, err := reader.Execute(c.Request.Context())
		if err != nil {
			// ошибка чтения режима не блокирует запросы
			logger.Log.WithError(err).Warn("maintenance: не удалось прочитать режим")
			c.Next()
			return
		}
		if !mode.IsEnabled {
			c.Next()
			return
		}

		if raw := BearerToken(c); raw != "" {
			if _, role, err := tokens.ParseAccess(raw); err == nil && role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		response.ServiceUnavailable(c, mode.Message)
	}
}
