package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "парк", "%парк%"},
		{"percent", "%", `%\%%`},
		{"underscore", "a_b", `%a\_b%`},
		{"backslash", `c:\`, `%c:\\%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPattern(tt.input))
		})
	}
}
