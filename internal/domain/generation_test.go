package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRequest_Normalize(t *testing.T) {
	req := GenerationRequest{Prompt: "a red fox"}
	req.Normalize()

	assert.Equal(t, DefaultAspectRatio, req.AspectRatio)
	assert.Equal(t, MagicPromptAuto, req.MagicPrompt)
	assert.Equal(t, StyleAuto, req.Style)
	assert.Equal(t, ProviderAuto, req.Provider)
}

func TestGenerationRequest_NormalizeLowercasesStyle(t *testing.T) {
	req := GenerationRequest{Prompt: "x", Style: "REALISTIC"}
	req.Normalize()
	assert.Equal(t, StyleRealistic, req.Style)
}

func TestGenerationRequest_Validate(t *testing.T) {
	valid := GenerationRequest{
		Prompt:      "a red fox",
		AspectRatio: "16:9",
		MagicPrompt: MagicPromptOn,
		Style:       StyleDesign,
		Provider:    ProviderReplicate,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*GenerationRequest)
	}{
		{"empty prompt", func(r *GenerationRequest) { r.Prompt = "   " }},
		{"bad aspect ratio", func(r *GenerationRequest) { r.AspectRatio = "wide" }},
		{"bad magic prompt", func(r *GenerationRequest) { r.MagicPrompt = "Maybe" }},
		{"bad style", func(r *GenerationRequest) { r.Style = "sketchy" }},
		{"bad provider", func(r *GenerationRequest) { r.Provider = "midjourney" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestValidAspectRatio(t *testing.T) {
	for _, r := range AspectRatios {
		assert.True(t, ValidAspectRatio(r), r)
	}

	assert.True(t, ValidAspectRatio("7:5"), "custom W:H ratios are accepted")
	assert.True(t, ValidAspectRatio("21:9"))

	assert.False(t, ValidAspectRatio(""))
	assert.False(t, ValidAspectRatio("1:0"))
	assert.False(t, ValidAspectRatio("0:1"))
	assert.False(t, ValidAspectRatio("4x3"))
	assert.False(t, ValidAspectRatio("a:b"))
}
