package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

var (
	// ErrUserNotFound возвращается, если middleware не положил пользователя в контекст.
	ErrUserNotFound = errors.New("пользователь не найден в контексте")

	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentUserID достаёт идентификатор пользователя, сохранённый AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	return userID, nil
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}
	return parsed, nil
}

// RespondError отправляет ошибку в формате {"error": "..."}.
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// RespondServiceError переводит ошибку сервиса в HTTP статус. Внутренние
// ошибки маскируются и пишутся в лог.
func RespondServiceError(c *gin.Context, err error) {
	status, message := middleware.ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("Request error")
	}
	RespondError(c, status, message)
}

func RespondUnauthorized(c *gin.Context) {
	RespondError(c, http.StatusUnauthorized, "требуется авторизация")
}

func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}

// ParseIntQuery читает числовой query-параметр с запасным значением.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination извлекает limit и offset с ограничениями по умолчанию.
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", 20)
	offset = ParseIntQuery(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return
}
