package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	cases := map[string]bool{
		"anna@example.com":      true,
		"  Anna@Example.COM  ":  true,
		"john.doe+lf@mail.co":   true,
		"":                      false,
		"no-at-sign.example.com": false,
		"a@b":                   false,
		"a@@example.com":        false,
		"bad space@example.com": false,
	}
	for email, ok := range cases {
		err := ValidateEmail(email)
		if ok {
			assert.NoError(t, err, email)
		} else {
			assert.Error(t, err, email)
		}
	}
}

func TestValidateLength_CountsRunes(t *testing.T) {
	assert.NoError(t, ValidateLength("поле", "кот", 3, 3))
	assert.Error(t, ValidateLength("поле", "ко", 3, 10))
	assert.Error(t, ValidateLength("поле", strings.Repeat("я", 11), 0, 10))
}

func TestValidateOTPCode(t *testing.T) {
	assert.NoError(t, ValidateOTPCode("012345"))
	assert.Error(t, ValidateOTPCode("12345"))
	assert.Error(t, ValidateOTPCode("12a456"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone(nil))
	ok := "+48 600-100-200"
	assert.NoError(t, ValidatePhone(&ok))
	bad := "call me"
	assert.Error(t, ValidatePhone(&bad))
}

func TestValidateExternalLink(t *testing.T) {
	good := "https://cdn.example.com/lostfound/a.jpg"
	assert.NoError(t, ValidateExternalLink(&good))
	ftp := "ftp://example.com/a.jpg"
	assert.Error(t, ValidateExternalLink(&ftp))
	noHost := "https://"
	assert.Error(t, ValidateExternalLink(&noHost))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Secret123"))
	assert.NoError(t, ValidatePassword("Пароль2026"))
	assert.ErrorIs(t, ValidatePassword("short1A"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword("alllowercase1"), ErrPasswordNoUpper)
	assert.ErrorIs(t, ValidatePassword("ALLUPPER1"), ErrPasswordNoLower)
	assert.ErrorIs(t, ValidatePassword("NoDigitsHere"), ErrPasswordNoDigit)
	assert.ErrorIs(t, ValidatePassword(" Secret123"), ErrPasswordHasSpaces)
	assert.ErrorIs(t, ValidatePassword("Aa1"+strings.Repeat("ж", 40)), ErrPasswordTooLong)
}
