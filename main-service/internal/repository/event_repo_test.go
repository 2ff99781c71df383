package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "jazz", "%jazz%"},
		{"percent", "100%", `%100\%%`},
		{"underscore", "open_air", `%open\_air%`},
		{"backslash", `a\b`, `%a\\b%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.text))
		})
	}
}
