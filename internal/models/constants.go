package models

// Роли пользователей
const (
	RoleUser    = "user"
	RolePartner = "partner"
	RoleAdmin   = "admin"
)

// Статусы учётных записей
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusBanned    = "banned"
)

// Назначения одноразовых кодов
const (
	OTPPurposeSignup        = "signup"
	OTPPurposePasswordReset = "password_reset"
)

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleUser:    {},
	RolePartner: {},
	RoleAdmin:   {},
}

// ValidUserStatuses список валидных статусов пользователей
var ValidUserStatuses = map[string]struct{}{
	UserStatusActive:    {},
	UserStatusSuspended: {},
	UserStatusBanned:    {},
}
