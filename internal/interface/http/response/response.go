// Package response единый конверт ответов API: {success, data, error} и
// pagination для списков.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PaginatedResponse struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

const internalMessage = "внутренняя ошибка сервера"

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Paginated отдаёт страницу списка. Пустая страница сериализуется как [], а не null.
func Paginated[T any](c *gin.Context, data []T, total, limit, offset int) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Data:    data,
		Pagination: Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+limit < total,
		},
	})
}

// Error отвечает по коду AppError. Прочие ошибки маскируются и пишутся в лог.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logRequestError(c, err)
		fail(c, http.StatusInternalServerError, apperror.ErrCodeInternal, internalMessage)
		return
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = apperror.StatusFor(appErr.Code)
	}
	if status >= http.StatusInternalServerError && appErr.Code != apperror.ErrCodeServiceUnavailable {
		logRequestError(c, err)
	}
	fail(c, status, appErr.Code, appErr.Message)
}

func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message)
}

// ServiceUnavailable прерывает цепочку middleware.
func ServiceUnavailable(c *gin.Context, message string) {
	fail(c, http.StatusServiceUnavailable, apperror.ErrCodeServiceUnavailable, message)
	c.Abort()
}

func fail(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: string(code), Message: message},
	})
}

func logRequestError(c *gin.Context, err error) {
	logger.Log.WithError(err).WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}).Error("request failed")
}
