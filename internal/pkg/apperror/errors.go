// Package apperror ошибки доменного слоя с кодом для клиента и HTTP статусом.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodePayloadTooLarge    ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var codeStatus = map[ErrorCode]int{
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
}

// AppError Message уходит клиенту как есть, Cause только в лог.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает по коду и сообщению, чтобы errors.Is находил sentinel-ошибки
// и после Wrap с другой причиной.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code && t.Message == e.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: StatusFor(code)}
}

func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	e := New(code, message)
	e.Cause = err
	return e
}

// StatusFor возвращает HTTP статус кода. Неизвестные коды считаются внутренней ошибкой.
func StatusFor(code ErrorCode) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HasCode сообщает, что в цепочке err есть AppError с кодом code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool   { return HasCode(err, ErrCodeNotFound) }
func IsForbidden(err error) bool  { return HasCode(err, ErrCodeForbidden) }
func IsValidation(err error) bool { return HasCode(err, ErrCodeValidation) }
func IsConflict(err error) bool   { return HasCode(err, ErrCodeConflict) }

var (
	ErrItemNotFound     = New(ErrCodeNotFound, "вещь не найдена")
	ErrClaimNotFound    = New(ErrCodeNotFound, "заявка не найдена")
	ErrUserNotFound     = New(ErrCodeNotFound, "пользователь не найден")
	ErrFeedbackNotFound = New(ErrCodeNotFound, "отзыв не найден")
	ErrUnauthorized     = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden        = New(ErrCodeForbidden, "недостаточно прав")
	ErrItemResolved     = New(ErrCodeConflict, "вещь уже возвращена владельцу")
	ErrChatLocked       = New(ErrCodeConflict, "чат доступен только для чтения")
	ErrStaleClaim       = New(ErrCodeConflict, "заявка была изменена, обновите страницу")
)
