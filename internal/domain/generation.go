package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Provider identifies an image generation backend.
type Provider string

const (
	ProviderAuto      Provider = "auto"
	ProviderOpenAI    Provider = "openai"
	ProviderReplicate Provider = "replicate"
	ProviderFal       Provider = "fal"
)

// MagicPrompt controls provider-side prompt rewriting.
type MagicPrompt string

const (
	MagicPromptAuto MagicPrompt = "Auto"
	MagicPromptOn   MagicPrompt = "On"
	MagicPromptOff  MagicPrompt = "Off"
)

// Style selects the aesthetic of the generated image.
type Style string

const (
	StyleAuto      Style = "auto"
	StyleGeneral   Style = "general"
	StyleRealistic Style = "realistic"
	StyleDesign    Style = "design"
	StyleNone      Style = "none"
)

// AspectRatios lists the fixed ratios offered by the UI, square first.
var AspectRatios = []string{
	"1:1",
	"16:9", "16:10", "3:2", "4:3", "5:4", "2:1", "3:1",
	"9:16", "10:16", "2:3", "3:4", "4:5", "1:2", "1:3",
}

// DefaultAspectRatio is used when no ratio is selected or the input is invalid.
const DefaultAspectRatio = "1:1"

var customRatioPattern = regexp.MustCompile(`^[1-9][0-9]*:[1-9][0-9]*$`)

// ValidAspectRatio reports whether s is one of the fixed ratios or a
// well-formed custom "W:H" ratio.
func ValidAspectRatio(s string) bool {
	for _, r := range AspectRatios {
		if s == r {
			return true
		}
	}
	return customRatioPattern.MatchString(s)
}

// GenerationRequest carries the parameters for one image generation call.
// It is built fresh per invocation and not mutated after Normalize.
type GenerationRequest struct {
	Prompt      string
	AspectRatio string
	MagicPrompt MagicPrompt
	Style       Style
	Provider    Provider
}

// Normalize fills in defaults for empty option fields.
func (r *GenerationRequest) Normalize() {
	if r.AspectRatio == "" {
		r.AspectRatio = DefaultAspectRatio
	}
	if r.MagicPrompt == "" {
		r.MagicPrompt = MagicPromptAuto
	}
	if r.Style == "" {
		r.Style = StyleAuto
	}
	if r.Provider == "" {
		r.Provider = ProviderAuto
	}
	r.Style = Style(strings.ToLower(string(r.Style)))
}

// Validate checks the request against the enumerated option values.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if !ValidAspectRatio(r.AspectRatio) {
		return fmt.Errorf("invalid aspect ratio: %q", r.AspectRatio)
	}
	switch r.MagicPrompt {
	case MagicPromptAuto, MagicPromptOn, MagicPromptOff:
	default:
		return fmt.Errorf("invalid magic prompt option: %q", r.MagicPrompt)
	}
	switch r.Style {
	case StyleAuto, StyleGeneral, StyleRealistic, StyleDesign, StyleNone:
	default:
		return fmt.Errorf("invalid style type: %q", r.Style)
	}
	switch r.Provider {
	case ProviderAuto, ProviderOpenAI, ProviderReplicate, ProviderFal:
	default:
		return fmt.Errorf("invalid provider: %q", r.Provider)
	}
	return nil
}

// GenerationResult holds the generated image and which backend produced it.
// Provider and Model matter when auto selection or a model fallback occurred.
type GenerationResult struct {
	Data     []byte
	MimeType string
	Provider string
	Model    string
}

// ImageGenerator is implemented by each provider client.
type ImageGenerator interface {
	// Name returns the human-readable provider name.
	Name() string

	// Configured reports whether the provider's credential is present.
	Configured() bool

	// Generate produces an image for the given request.
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}
