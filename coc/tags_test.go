package coc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "#2PP0R9", NormalizeTag("2ppOr9"))
	assert.Equal(t, "#ABC123", NormalizeTag("  #abc123 "))
	assert.Equal(t, "#900PP", NormalizeTag("9OOPP"))
}

func TestValidTag(t *testing.T) {
	assert.True(t, ValidTag("#2PP"))
	assert.True(t, ValidTag("#90PYLQGRJCUV"))

	assert.False(t, ValidTag("2PP"), "missing hash")
	assert.False(t, ValidTag("#2P"), "too short")
	assert.False(t, ValidTag("#2PPPPPPPPPPPP"), "too long")
	assert.False(t, ValidTag("#ABZ123"), "letter outside the game alphabet")
	assert.False(t, ValidTag("#2pp"), "lower case is not normalized")
}

func TestExtractTags(t *testing.T) {
	text := "my main is #2PPORP and my alt 8yuc2vg, main again: #2PP0RP"
	assert.Equal(t, []string{"#2PP0RP", "#8YUC2VG"}, ExtractTags(text))

	assert.Empty(t, ExtractTags("no tags here at all"))
}
