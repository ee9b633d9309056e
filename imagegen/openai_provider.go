// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// openai_provider.go implements the OpenAI-compatible adapter on top of the
// go-openai client. The endpoint is overridable so the same adapter serves
// api.openai.com and any compatible gateway; base64 output is requested and
// a returned URL is accepted as fallback.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	// defaultOpenAIBaseURL is the canonical API base.
	defaultOpenAIBaseURL = "https://api.openai.com/v1"

	// defaultOpenAIImageModel is used unless the endpoint requires a
	// specific deployment name.
	defaultOpenAIImageModel = "dall-e-3"
)

// OpenAIProvider implements Provider for OpenAI-compatible image APIs.
//
// Thread Safety: safe for concurrent use; the underlying client pools
// connections.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates the OpenAI-compatible adapter.
//
// endpoint accepts either a base URL ("https://proxy.example/v1") or the
// full generations URL the configuration editor may hold
// ("https://proxy.example/v1/images/generations"); both normalize to the
// same base. An empty endpoint uses the canonical API.
func NewOpenAIProvider(apiKey, endpoint string, httpClient *http.Client) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errMissingCredential(ProviderOpenAI)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = normalizeOpenAIBase(endpoint)
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  defaultOpenAIImageModel,
	}, nil
}

// normalizeOpenAIBase reduces any accepted endpoint form to the client's
// base URL.
func normalizeOpenAIBase(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return defaultOpenAIBaseURL
	}
	endpoint = strings.TrimRight(endpoint, "/")
	endpoint = strings.TrimSuffix(endpoint, "/images/generations")
	return endpoint
}

// Generate issues one image request, preferring inline base64 output and
// falling back to a returned URL.
func (p *OpenAIProvider) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	imageReq := openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          p.model,
		Size:           NormalizeResolution(req.Resolution),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	}

	resp, err := p.client.CreateImage(ctx, imageReq)
	if err != nil {
		return "", translateOpenAIError(err)
	}

	if len(resp.Data) == 0 {
		return "", errMalformedResponse(ProviderOpenAI, "response contains no image data")
	}
	if b64 := resp.Data[0].B64JSON; b64 != "" {
		return "data:image/png;base64," + b64, nil
	}
	if url := resp.Data[0].URL; url != "" {
		return url, nil
	}
	return "", errMalformedResponse(ProviderOpenAI, "response contains neither base64 data nor a URL")
}

// translateOpenAIError maps go-openai errors onto the classified kinds.
func translateOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		return classifyHTTPFailure(ProviderOpenAI, apiErr.HTTPStatusCode, body)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := string(reqErr.Body)
		if body == "" && reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return classifyHTTPFailure(ProviderOpenAI, reqErr.HTTPStatusCode, body)
	}

	return &GenError{
		Kind:     KindRequestRejected,
		Provider: ProviderOpenAI,
		Message:  fmt.Sprintf("request failed: %v", err),
		Err:      err,
	}
}

var _ Provider = (*OpenAIProvider)(nil)
