// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// gemini.go implements the synchronous inline-base64 adapter. One request
// carries the prompt and an aspect ratio derived from the resolution; the
// response carries the image bytes inline, which are wrapped into a data URI.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// defaultGeminiEndpoint is the canonical generateContent URL for the
	// image model.
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-image:generateContent"

	// geminiVerifyEndpoint is the cheapest authenticated text call, used
	// only by the connection verifier.
	geminiVerifyEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"
)

// GeminiProvider implements Provider for the synchronous inline-base64 API.
//
// Thread Safety: safe for concurrent use; each call builds its own request.
type GeminiProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGeminiProvider creates the synchronous image adapter.
// endpoint may be "" to use the canonical URL. The API key must be resolved
// by the caller; an empty key is rejected before any network call.
func NewGeminiProvider(apiKey, endpoint string, client *http.Client) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errMissingCredential(ProviderGemini)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	return &GeminiProvider{apiKey: apiKey, endpoint: endpoint, client: client}, nil
}

// geminiRequest is the generateContent wire shape, reduced to the fields
// this adapter sends.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate issues one generateContent call and extracts the inline image.
// The resolution is translated through the aspect-ratio table; unrecognized
// resolutions request the square 1:1 default.
func (p *GeminiProvider) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &geminiImageConfig{AspectRatio: AspectRatioFor(req.Resolution)},
		},
	}

	status, body, err := p.post(ctx, p.endpoint, payload)
	if err != nil {
		return "", &GenError{
			Kind:     KindRequestRejected,
			Provider: ProviderGemini,
			Message:  fmt.Sprintf("request failed: %v", err),
			Err:      err,
		}
	}
	if status < 200 || status >= 300 {
		return "", classifyHTTPFailure(ProviderGemini, status, body)
	}

	var decoded geminiResponse
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return "", errMalformedResponse(ProviderGemini, fmt.Sprintf("undecodable response: %v", err))
	}

	for _, cand := range decoded.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return fmt.Sprintf("data:%s;base64,%s", mime, part.InlineData.Data), nil
			}
		}
	}

	return "", errMalformedResponse(ProviderGemini, "response contains no inline image data")
}

// post sends a JSON body with the API key header and returns status + body.
func (p *GeminiProvider) post(ctx context.Context, url string, payload any) (int, string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return 0, "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(data), nil
}

var _ Provider = (*GeminiProvider)(nil)
