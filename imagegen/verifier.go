// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// verifier.go implements the connection verifier behind the settings
// surface. Per provider it issues the cheapest request that exercises
// authentication and reduces everything to a pass/fail boolean; the caller
// never sees response payloads, and network failures never propagate.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// hfWhoAmIURL is the identity lookup used to verify space tokens.
const hfWhoAmIURL = "https://huggingface.co/api/whoami-v2"

// ConnectionVerifier checks that a provider credential is accepted.
type ConnectionVerifier struct {
	client *http.Client
}

// NewConnectionVerifier creates a verifier using the given HTTP client.
// A nil client falls back to http.DefaultClient.
func NewConnectionVerifier(client *http.Client) *ConnectionVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &ConnectionVerifier{client: client}
}

// Verify reports whether the credential is accepted by the provider.
//
// An empty credential is false immediately, with no network call: there is
// nothing to verify. Any network-level error is also false; verification is
// a convenience check, not a diagnosis.
//
// Check styles per provider:
//   - gemini: minimal text generation call (cheapest authenticated request)
//   - zimage: identity lookup against the hosting hub
//   - modelscope, dashscope: deliberately invalid generation call; the HTTP
//     status alone discloses auth validity (401/403 reject, anything else
//     means the key was accepted), so no costly generation is triggered
//   - openai: model list
func (v *ConnectionVerifier) Verify(ctx context.Context, provider ProviderID, credential, endpoint, proxy string) bool {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return false
	}

	switch provider {
	case ProviderGemini:
		return v.verifyGemini(ctx, credential, endpoint)
	case ProviderZImage:
		return v.verifyZImage(ctx, credential, endpoint)
	case ProviderModelScope:
		return v.verifyByStatus(ctx, v.modelScopeProbe(credential, endpoint, proxy))
	case ProviderDashScope:
		return v.verifyByStatus(ctx, v.dashScopeProbe(credential, endpoint))
	case ProviderOpenAI:
		return v.verifyOpenAI(ctx, credential, endpoint)
	default:
		return false
	}
}

// verifyGemini issues the smallest possible text generation call. An
// endpoint override replaces the whole generateContent URL, so the check
// runs against the host the generation adapter will actually use.
func (v *ConnectionVerifier) verifyGemini(ctx context.Context, credential, endpoint string) bool {
	if endpoint == "" {
		endpoint = geminiVerifyEndpoint
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": "ping"}}},
		},
		"generationConfig": map[string]any{"maxOutputTokens": 1},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", credential)

	status, ok := v.statusOf(req)
	return ok && status >= 200 && status < 300
}

// verifyZImage checks the token against the hub's identity endpoint. When
// a space URL override is configured, the hub has nothing to say about it;
// instead the space itself is probed and only an explicit auth rejection
// counts as a bad token.
func (v *ConnectionVerifier) verifyZImage(ctx context.Context, credential, endpoint string) bool {
	if endpoint != "" {
		req, err := http.NewRequest(http.MethodGet, strings.TrimRight(endpoint, "/"), nil)
		if err != nil {
			return false
		}
		req.Header.Set("Authorization", "Bearer "+credential)
		return v.verifyByStatus(ctx, req)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hfWhoAmIURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	status, ok := v.statusOf(req)
	return ok && status >= 200 && status < 300
}

// modelScopeProbe builds a deliberately invalid generation request; the
// response body is irrelevant, only the status discloses auth validity.
func (v *ConnectionVerifier) modelScopeProbe(credential, endpoint, proxy string) *http.Request {
	if endpoint == "" {
		endpoint = defaultModelScopeBase
	}
	url := joinProxy(proxy, strings.TrimRight(endpoint, "/")+"/v1/images/generations")
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(`{"model":""}`))
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// dashScopeProbe builds the matching invalid probe for the other task API.
func (v *ConnectionVerifier) dashScopeProbe(credential, endpoint string) *http.Request {
	if endpoint == "" {
		endpoint = defaultDashScopeBase
	}
	url := strings.TrimRight(endpoint, "/") + dashScopeSubmitPath
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(`{"model":""}`))
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// verifyByStatus accepts any HTTP status except an explicit auth rejection.
// A deliberately invalid request still returns 4xx from a provider that
// accepted the key, so only 401/403 mean a bad credential.
func (v *ConnectionVerifier) verifyByStatus(ctx context.Context, req *http.Request) bool {
	if req == nil {
		return false
	}
	status, ok := v.statusOf(req.WithContext(ctx))
	if !ok {
		return false
	}
	return status != http.StatusUnauthorized && status != http.StatusForbidden
}

// verifyOpenAI lists models through the same client the adapter uses.
func (v *ConnectionVerifier) verifyOpenAI(ctx context.Context, credential, endpoint string) bool {
	clientConfig := openai.DefaultConfig(credential)
	clientConfig.BaseURL = normalizeOpenAIBase(endpoint)
	clientConfig.HTTPClient = v.client

	client := openai.NewClientWithConfig(clientConfig)
	_, err := client.ListModels(ctx)
	return err == nil
}

// statusOf executes the request and returns only its status code.
func (v *ConnectionVerifier) statusOf(req *http.Request) (int, bool) {
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, true
}
