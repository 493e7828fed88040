package domain

// Numbered-menu mappings for the interactive CLI. Unknown choices fall back
// to the documented defaults rather than failing.

var aspectRatioChoices = map[string]string{
	"1": "1:1",
	"2": "16:9",
	"3": "9:16",
	"4": "3:2",
	"5": "2:3",
}

// AspectRatioFromChoice maps a menu index to an aspect ratio, defaulting to
// square. Index "6" (custom) is handled by the caller before this point.
func AspectRatioFromChoice(choice string) string {
	if r, ok := aspectRatioChoices[choice]; ok {
		return r
	}
	return DefaultAspectRatio
}

var magicPromptChoices = map[string]MagicPrompt{
	"1": MagicPromptAuto,
	"2": MagicPromptOn,
	"3": MagicPromptOff,
}

// MagicPromptFromChoice maps a menu index to a magic prompt option.
func MagicPromptFromChoice(choice string) MagicPrompt {
	if m, ok := magicPromptChoices[choice]; ok {
		return m
	}
	return MagicPromptAuto
}

var styleChoices = map[string]Style{
	"1": StyleAuto,
	"2": StyleGeneral,
	"3": StyleRealistic,
	"4": StyleDesign,
	"5": StyleNone,
}

// StyleFromChoice maps a menu index to a style type.
func StyleFromChoice(choice string) Style {
	if s, ok := styleChoices[choice]; ok {
		return s
	}
	return StyleAuto
}

var providerChoices = map[string]Provider{
	"1": ProviderAuto,
	"2": ProviderReplicate,
	"3": ProviderFal,
	"4": ProviderOpenAI,
}

// ProviderFromChoice maps a menu index to a provider selection.
func ProviderFromChoice(choice string) Provider {
	if p, ok := providerChoices[choice]; ok {
		return p
	}
	return ProviderAuto
}
