package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

const internalErrorMessage = "внутренняя ошибка сервера"

// ErrorHandler обрабатывает ошибки, добавленные через c.Error, если хэндлер
// сам не записал ответ. Внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, message := ErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		c.JSON(status, gin.H{"error": message})
	}
}

// ErrorStatus сопоставляет ошибку сервисов и репозиториев с HTTP статусом и
// сообщением для клиента.
func ErrorStatus(err error) (int, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.Code != apperror.ErrCodeServiceUnavailable {
			return appErr.HTTPStatus, internalErrorMessage
		}
		return appErr.HTTPStatus, appErr.Message
	}

	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrNotificationNotFound):
		return http.StatusNotFound, publicMessage(err)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, publicMessage(err)
	case errors.Is(err, service.ErrAccountBlocked),
		errors.Is(err, service.ErrCannotModifySelf):
		return http.StatusForbidden, publicMessage(err)
	case errors.Is(err, service.ErrEmailRegistered):
		return http.StatusConflict, publicMessage(err)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrOTPExpired):
		return http.StatusBadRequest, publicMessage(err)
	case errors.Is(err, service.ErrOTPAttemptsExceeded):
		return http.StatusTooManyRequests, publicMessage(err)
	}

	return http.StatusInternalServerError, internalErrorMessage
}

// publicMessage убирает из текста ошибки префиксы компонентов вида "auth service: ".
func publicMessage(err error) string {
	msg := err.Error()
	for {
		head, tail, found := strings.Cut(msg, ": ")
		if !found || !isComponentPrefix(head) {
			return msg
		}
		msg = tail
	}
}

func isComponentPrefix(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != ' ' {
			return false
		}
	}
	return true
}
