// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// provider.go defines the closed set of provider identities, the uniform
// Provider contract every adapter implements, and the Settings value the
// surrounding UI hands in per call.
//
// Each provider speaks its own wire protocol (synchronous inline base64,
// space-hosted event stream, submit-and-poll task APIs, OpenAI-compatible);
// the adapters in this package normalize all of them behind Provider.
package imagegen

import (
	"context"
	"fmt"
	"strings"
)

// ProviderID identifies one of the supported generation back-ends.
// The set is closed: dispatch always happens through an exhaustive switch
// with an explicit error default, never a silent fallback provider.
type ProviderID string

const (
	// ProviderGemini is the synchronous inline-base64 image API.
	// It is the designated primary provider: the only one whose credential
	// falls back to the process-wide GEMINI_API_KEY secret.
	ProviderGemini ProviderID = "gemini"

	// ProviderZImage is the space-hosted streaming generator
	// (ordered payload array, event id, SSE data lines).
	ProviderZImage ProviderID = "zimage"

	// ProviderModelScope is the submit-and-poll task API, variant A.
	// Browser calls to it are CORS-blocked, so a proxy prefix is injectable.
	ProviderModelScope ProviderID = "modelscope"

	// ProviderDashScope is the submit-and-poll task API, variant B.
	ProviderDashScope ProviderID = "dashscope"

	// ProviderOpenAI is the OpenAI-compatible image API with an
	// overridable endpoint.
	ProviderOpenAI ProviderID = "openai"
)

// AllProviders returns the closed provider set in display order.
func AllProviders() []ProviderID {
	return []ProviderID{
		ProviderGemini,
		ProviderZImage,
		ProviderModelScope,
		ProviderDashScope,
		ProviderOpenAI,
	}
}

// Valid reports whether p names a supported provider.
func (p ProviderID) Valid() bool {
	switch p {
	case ProviderGemini, ProviderZImage, ProviderModelScope, ProviderDashScope, ProviderOpenAI:
		return true
	}
	return false
}

// ParseProviderID converts a user-supplied string into a ProviderID.
func ParseProviderID(s string) (ProviderID, error) {
	p := ProviderID(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("imagegen: unknown provider %q", s)
	}
	return p, nil
}

// Provider is the uniform generation contract implemented by every adapter.
//
// Generate translates the normalized request into the provider's wire
// protocol and returns a single displayable image reference: either a data
// URI with inline encoded bytes or a remote URL. Every non-success path
// fails with a classified *GenError (see errors.go). Exactly one result or
// exactly one error per call, never both.
type Provider interface {
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
}

// Settings is the resolved configuration one generation call operates on.
// It is assembled by the caller (the web layer, from core.Config plus any
// per-request overrides) and is read-only within the core.
type Settings struct {
	// Provider selects the back-end for this call.
	Provider ProviderID

	// Credentials maps each provider to its configured secret.
	// Absent or empty means "not configured"; resolution and fallback
	// rules live in CredentialResolver.
	Credentials map[ProviderID]string

	// Endpoints maps providers to optional base-URL overrides.
	// Empty means "use the provider's canonical URL".
	Endpoints map[ProviderID]string

	// ProxyURL is an optional CORS-bypass proxy prefix for providers
	// that cannot be reached directly from a browser.
	ProxyURL string

	// Steps is the iteration-steps tunable (0 = provider default).
	Steps int

	// TimeShift is the schedule/time-shift tunable (0 = provider default).
	TimeShift float64
}

// Credential returns the configured secret for p, or "" when unset.
func (s Settings) Credential(p ProviderID) string {
	if s.Credentials == nil {
		return ""
	}
	return s.Credentials[p]
}

// Endpoint returns the endpoint override for p, or "" for the canonical URL.
func (s Settings) Endpoint(p ProviderID) string {
	if s.Endpoints == nil {
		return ""
	}
	return s.Endpoints[p]
}
