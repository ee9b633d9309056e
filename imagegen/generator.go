// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// generator.go implements the Generator facade, the single entry point the
// web layer calls. It resolves the credential, constructs the adapter for
// the configured provider through an exhaustive switch, and surfaces one
// uniform result-or-classified-error contract. No retries happen here: each
// adapter owns its internal poll/stream budget, and a failure at this layer
// is terminal for the call.
package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zhlf2008/AI-Sweater-Designer/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator dispatches generation calls to the configured provider adapter.
//
// Thread Safety: Generator is stateless per call and safe for concurrent
// use; serializing concurrent generations is the caller's concern.
type Generator struct {
	resolver *CredentialResolver
	client   *http.Client
	logger   *logging.Logger
}

// NewGenerator creates the generation facade.
func NewGenerator(resolver *CredentialResolver, client *http.Client, logger *logging.Logger) (*Generator, error) {
	if resolver == nil {
		return nil, fmt.Errorf("imagegen: resolver cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("imagegen: logger cannot be nil")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Generator{
		resolver: resolver,
		client:   client,
		logger:   logger.Named("generator"),
	}, nil
}

// Generate runs one generation call end to end and returns the image
// reference (data URI or remote URL).
func (g *Generator) Generate(ctx context.Context, prompt, resolution string, seed int64, s Settings) (string, error) {
	correlationID := uuid.NewString()
	log := g.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("provider", string(s.Provider)),
	)

	if prompt == "" {
		return "", fmt.Errorf("imagegen: prompt cannot be empty")
	}
	if !s.Provider.Valid() {
		return "", fmt.Errorf("imagegen: unknown provider %q", s.Provider)
	}

	req := NewGenerationRequest(prompt, resolution, seed, s)
	log.Info("starting image generation",
		zap.String("prompt_preview", truncateText(prompt, 50)),
		zap.String("resolution", req.Resolution),
		zap.Int64("seed", req.Seed))

	provider, err := g.providerFor(s)
	if err != nil {
		log.Error("provider setup failed", zap.Error(err))
		return "", err
	}

	start := time.Now()
	ref, err := provider.Generate(ctx, req)
	if err != nil {
		log.Error("image generation failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}

	log.Info("image generated",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("result_preview", truncateText(ref, 80)))
	return ref, nil
}

// providerFor constructs the adapter for the selected provider.
//
// The switch is exhaustive over the closed ProviderID set; an unlisted
// identity is an error, never a silent fallback to a default provider.
func (g *Generator) providerFor(s Settings) (Provider, error) {
	credential := g.resolver.Resolve(s, s.Provider)

	switch s.Provider {
	case ProviderGemini:
		return NewGeminiProvider(credential, s.Endpoint(ProviderGemini), g.client)
	case ProviderZImage:
		// Anonymous jobs are allowed; an empty token is not an error.
		return NewSpaceProvider(credential, s.Endpoint(ProviderZImage), g.client), nil
	case ProviderModelScope:
		return NewModelScopeProvider(credential, s.Endpoint(ProviderModelScope), s.ProxyURL, g.client)
	case ProviderDashScope:
		return NewDashScopeProvider(credential, s.Endpoint(ProviderDashScope), g.client)
	case ProviderOpenAI:
		return NewOpenAIProvider(credential, s.Endpoint(ProviderOpenAI), g.client)
	default:
		return nil, fmt.Errorf("imagegen: unknown provider %q", s.Provider)
	}
}

// Resolver returns the credential resolver the facade was built with.
func (g *Generator) Resolver() *CredentialResolver {
	return g.resolver
}
