// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// resolver.go implements credential resolution. The process-wide fallback
// secret is an explicit constructor dependency, not an ambient environment
// lookup, so the resolver is trivially testable and the core has no hidden
// global state.
package imagegen

import "strings"

// CredentialResolver resolves the effective API secret for a provider.
//
// Resolution order:
//  1. the explicitly configured per-provider key from Settings
//  2. for the primary provider (gemini) only, the injected fallback secret
//  3. empty string ("not configured")
//
// Resolve never fails; callers treat "" as a missing credential.
type CredentialResolver struct {
	// fallbackKey is the process-wide default secret for the primary
	// provider, typically sourced from GEMINI_API_KEY at startup.
	fallbackKey string
}

// NewCredentialResolver creates a resolver with the given fallback secret
// for the primary provider. Pass "" when no fallback is configured.
func NewCredentialResolver(fallbackKey string) *CredentialResolver {
	return &CredentialResolver{fallbackKey: strings.TrimSpace(fallbackKey)}
}

// Resolve returns the effective secret for provider p under settings s.
func (r *CredentialResolver) Resolve(s Settings, p ProviderID) string {
	if key := strings.TrimSpace(s.Credential(p)); key != "" {
		return key
	}
	if p == ProviderGemini {
		return r.fallbackKey
	}
	return ""
}

// HasFallback reports whether a process-wide fallback secret is configured.
func (r *CredentialResolver) HasFallback() bool {
	return r.fallbackKey != ""
}
