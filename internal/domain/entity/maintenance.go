package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

const DefaultMaintenanceMessage = "Сервис временно недоступен: идут технические работы."

// MaintenanceMode единственная запись, которую переключают администраторы.
type MaintenanceMode struct {
	IsEnabled bool
	Message   string
	UpdatedBy *uuid.UUID
	UpdatedAt time.Time
}

func (m *MaintenanceMode) Set(enabled bool, message string, by *uuid.UUID) error {
	message = strings.TrimSpace(message)
	if err := validation.ValidateLength("сообщение", message, 0, validation.MaxMaintenanceMessageLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if enabled && message == "" {
		message = DefaultMaintenanceMessage
	}

	m.IsEnabled = enabled
	m.Message = message
	m.UpdatedBy = by
	m.UpdatedAt = time.Now()
	return nil
}
