package validation

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordRunes = 8
	// bcrypt учитывает только первые 72 байта, более длинный пароль отклоняется
	maxPasswordBytes = 72
)

var (
	ErrPasswordTooShort  = errors.New("пароль должен быть не менее 8 символов")
	ErrPasswordTooLong   = errors.New("пароль должен быть не длиннее 72 байт")
	ErrPasswordNoUpper   = errors.New("пароль должен содержать хотя бы одну заглавную букву")
	ErrPasswordNoLower   = errors.New("пароль должен содержать хотя бы одну строчную букву")
	ErrPasswordNoDigit   = errors.New("пароль должен содержать хотя бы одну цифру")
	ErrPasswordHasSpaces = errors.New("пароль не должен начинаться или заканчиваться пробелом")
)

// ValidatePassword проверяет пароль при регистрации, сбросе и создании администратора.
func ValidatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordRunes:
		return ErrPasswordTooShort
	case len(password) > maxPasswordBytes:
		return ErrPasswordTooLong
	}

	first, _ := utf8.DecodeRuneInString(password)
	last, _ := utf8.DecodeLastRuneInString(password)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return ErrPasswordHasSpaces
	}

	var upper, lower, digit bool
	for _, r := range password {
		upper = upper || unicode.IsUpper(r)
		lower = lower || unicode.IsLower(r)
		digit = digit || unicode.IsDigit(r)
	}
	switch {
	case !upper:
		return ErrPasswordNoUpper
	case !lower:
		return ErrPasswordNoLower
	case !digit:
		return ErrPasswordNoDigit
	}
	return nil
}
