package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinDisplayNameLength        = 2
	MaxDisplayNameLength        = 100
	MinBusinessNameLength       = 2
	MaxBusinessNameLength       = 200
	MinItemNameLength           = 2
	MaxItemNameLength           = 120
	MinCategoryLength           = 2
	MaxCategoryLength           = 60
	MinItemDescriptionLength    = 10
	MaxItemDescriptionLength    = 2000
	MinLocationLength           = 2
	MaxLocationLength           = 200
	MinContactLength            = 3
	MaxContactLength            = 200
	MinProofLength              = 20
	MaxProofLength              = 2000
	MinMessageLength            = 1
	MaxMessageLength            = 5000
	MaxFeedbackLength           = 2000
	MaxMaintenanceMessageLength = 500
	MaxSearchQueryLength        = 200
	MaxExternalLinkLength       = 500
	OTPCodeLength               = 6
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	displayNameRegex = regexp.MustCompile(`^[\p{L}0-9\s\-_.,'!?()]+$`)
	phoneRegex       = regexp.MustCompile(`^\+?[0-9\s\-()]{6,20}$`)
	otpRegex         = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateBusinessName проверяет название организации партнёра.
func ValidateBusinessName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("название организации обязательно для партнёра")
	}
	return ValidateLength("название организации", name, MinBusinessNameLength, MaxBusinessNameLength)
}

// ValidatePhone проверяет необязательный номер телефона.
func ValidatePhone(phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(strings.TrimSpace(*phone)) {
		return fmt.Errorf("некорректный номер телефона")
	}
	return nil
}

// ValidateOTPCode проверяет формат одноразового кода.
func ValidateOTPCode(code string) error {
	if !otpRegex.MatchString(strings.TrimSpace(code)) {
		return fmt.Errorf("код должен состоять из %d цифр", OTPCodeLength)
	}
	return nil
}

// ValidateExternalLink проверяет внешнюю ссылку.
func ValidateExternalLink(link *string) error {
	if link == nil || *link == "" {
		return nil
	}

	linkStr := strings.TrimSpace(*link)
	if err := ValidateLength("ссылка", linkStr, 0, MaxExternalLinkLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(linkStr)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}
	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}

// ValidateSearchQuery ограничивает длину поисковой строки.
func ValidateSearchQuery(q string) error {
	return ValidateLength("поисковый запрос", strings.TrimSpace(q), 0, MaxSearchQueryLength)
}
