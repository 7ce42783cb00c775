package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Символы шаблона LIKE в поисковом запросе экранируются, чтобы
// "_" и "%" не расширяли префикс до шаблона.
func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `https://example.com/a\_b`, likeEscaper.Replace("https://example.com/a_b"))
	assert.Equal(t, `https://example.com/100\%`, likeEscaper.Replace("https://example.com/100%"))
	assert.Equal(t, `https://example.com/a\\b`, likeEscaper.Replace(`https://example.com/a\b`))
	assert.Equal(t, "https://example.com/plain", likeEscaper.Replace("https://example.com/plain"))
}
