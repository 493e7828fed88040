package service

import (
	"fmt"
	"strings"

	"github.com/velumi/img2svg/internal/config"
	"github.com/velumi/img2svg/internal/domain"
	"github.com/velumi/img2svg/internal/infrastructure/fal"
	"github.com/velumi/img2svg/internal/infrastructure/openai"
	"github.com/velumi/img2svg/internal/infrastructure/replicate"
)

// selectorEntry binds a provider identifier to its client. Order in the
// selector slice is the auto-selection priority.
type selectorEntry struct {
	id  domain.Provider
	env string
	gen domain.ImageGenerator
}

// Selector picks an image generation backend for a request, either the one
// explicitly asked for or the first configured one in priority order.
type Selector struct {
	entries []selectorEntry
}

// NewSelector wires the provider clients from configuration. Auto-selection
// priority is Replicate, Fal.ai, OpenAI.
func NewSelector(cfg *config.Config) *Selector {
	return &Selector{
		entries: []selectorEntry{
			{
				id:  domain.ProviderReplicate,
				env: "REPLICATE_API_TOKEN",
				gen: replicate.NewClient(cfg.ReplicateAPIToken, cfg.HTTPTimeout, cfg.PollInterval, cfg.PollMaxAttempts),
			},
			{
				id:  domain.ProviderFal,
				env: "FAL_KEY",
				gen: fal.NewClient(cfg.FalKey, cfg.HTTPTimeout),
			},
			{
				id:  domain.ProviderOpenAI,
				env: "OPENAI_API_KEY",
				gen: openai.NewClient(cfg.OpenAIAPIKey, cfg.HTTPTimeout),
			},
		},
	}
}

// Select returns the client for the requested provider, or the first
// configured one when "auto" is requested. A missing credential for an
// explicitly requested provider is a configuration error.
func (s *Selector) Select(p domain.Provider) (domain.ImageGenerator, error) {
	if p == "" {
		p = domain.ProviderAuto
	}

	if p != domain.ProviderAuto {
		for _, e := range s.entries {
			if e.id != p {
				continue
			}
			if !e.gen.Configured() {
				return nil, fmt.Errorf("provider %s is not configured, set the %s environment variable", e.gen.Name(), e.env)
			}
			return e.gen, nil
		}
		return nil, fmt.Errorf("unknown provider: %q", p)
	}

	for _, e := range s.entries {
		if e.gen.Configured() {
			return e.gen, nil
		}
	}

	vars := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		vars = append(vars, e.env)
	}
	return nil, fmt.Errorf("no image generation provider is configured, set one of %s", strings.Join(vars, ", "))
}

// Available lists the names of configured providers, in priority order.
func (s *Selector) Available() []string {
	var names []string
	for _, e := range s.entries {
		if e.gen.Configured() {
			names = append(names, e.gen.Name())
		}
	}
	return names
}
