package domain_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestConversationTitle(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{
			name:     "short message unchanged",
			message:  "What did I spend on food?",
			expected: "What did I spend on food?",
		},
		{
			name:     "empty message",
			message:  "",
			expected: "",
		},
		{
			name:     "exactly fifty characters unchanged",
			message:  strings.Repeat("a", 50),
			expected: strings.Repeat("a", 50),
		},
		{
			name:     "long message truncated with ellipsis",
			message:  strings.Repeat("a", 51),
			expected: strings.Repeat("a", 50) + "...",
		},
		{
			name:     "multibyte message truncated on rune boundary",
			message:  strings.Repeat("é", 60),
			expected: strings.Repeat("é", 50) + "...",
		},
		{
			name:     "multibyte message within limit unchanged",
			message:  strings.Repeat("账", 50),
			expected: strings.Repeat("账", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ConversationTitle(tt.message)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
