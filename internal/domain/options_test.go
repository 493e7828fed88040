package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAspectRatioFromChoice(t *testing.T) {
	assert.Equal(t, "1:1", AspectRatioFromChoice("1"))
	assert.Equal(t, "16:9", AspectRatioFromChoice("2"))
	assert.Equal(t, "2:3", AspectRatioFromChoice("5"))

	// Invalid input falls back to the documented square default.
	assert.Equal(t, "1:1", AspectRatioFromChoice(""))
	assert.Equal(t, "1:1", AspectRatioFromChoice("9"))
	assert.Equal(t, "1:1", AspectRatioFromChoice("banana"))
}

func TestMagicPromptFromChoice(t *testing.T) {
	assert.Equal(t, MagicPromptAuto, MagicPromptFromChoice("1"))
	assert.Equal(t, MagicPromptOn, MagicPromptFromChoice("2"))
	assert.Equal(t, MagicPromptOff, MagicPromptFromChoice("3"))
	assert.Equal(t, MagicPromptAuto, MagicPromptFromChoice("0"))
}

func TestStyleFromChoice(t *testing.T) {
	assert.Equal(t, StyleAuto, StyleFromChoice("1"))
	assert.Equal(t, StyleRealistic, StyleFromChoice("3"))
	assert.Equal(t, StyleNone, StyleFromChoice("5"))
	assert.Equal(t, StyleAuto, StyleFromChoice("x"))
}

func TestProviderFromChoice(t *testing.T) {
	assert.Equal(t, ProviderAuto, ProviderFromChoice("1"))
	assert.Equal(t, ProviderReplicate, ProviderFromChoice("2"))
	assert.Equal(t, ProviderFal, ProviderFromChoice("3"))
	assert.Equal(t, ProviderOpenAI, ProviderFromChoice("4"))
	assert.Equal(t, ProviderAuto, ProviderFromChoice(""))
}
