package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/service"
	"github.com/ignatzorin/lostfound-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub          *ws.Hub
	tokenManager *service.TokenManager
	accounts     middleware.AccountChecker
	upgrader     websocket.Upgrader
	// ctx живёт до остановки сервера и закрывает соединения при shutdown
	ctx context.Context
}

// NewWSHandler создаёт хэндлер. Браузерные подключения проверяются той же
// политикой, что и CORS; клиенты без Origin (мобильные, CLI) пропускаются.
func NewWSHandler(ctx context.Context, hub *ws.Hub, tokens *service.TokenManager, accounts middleware.AccountChecker, origins middleware.OriginPolicy) *WSHandler {
	return &WSHandler{
		hub:          hub,
		tokenManager: tokens,
		accounts:     accounts,
		ctx:          ctx,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins.Allowed(origin)
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access токен обязателен"})
		return
	}

	userID, _, err := h.tokenManager.ParseAccess(rawToken)
	if err != nil || userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "невалидный access токен"})
		return
	}

	active, err := h.accounts.IsActive(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось проверить аккаунт"})
		return
	}
	if !active {
		c.JSON(http.StatusForbidden, gin.H{"error": "аккаунт заблокирован"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade сам ответил клиенту
		logger.Log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("websocket upgrade failed")
		return
	}

	client := ws.NewClient(conn, h.hub, userID)
	h.hub.Register(client)
	client.Run(h.ctx)
}
