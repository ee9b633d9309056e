// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// spacehost.go implements the space-hosted streaming adapter. The job is
// submitted as an ordered parameter array, the space answers with an event
// id, and the result arrives on a per-event data stream decoded by
// eventstream.go.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// defaultZImageSpace is the canonical space URL.
	defaultZImageSpace = "https://tongyi-mai-z-image-turbo.hf.space"

	// spaceCallPath is the job-submission path; the event stream is read
	// from the same path suffixed with /{event_id}.
	spaceCallPath = "/gradio_api/call/generate_image"
)

// SpaceProvider implements Provider for the space-hosted streaming
// generator. The bearer token is optional: public spaces accept anonymous
// jobs, a token lifts queue limits.
type SpaceProvider struct {
	token    string
	endpoint string
	client   *http.Client
	stream   PollConfig
}

// NewSpaceProvider creates the streaming adapter. token may be "".
func NewSpaceProvider(token, endpoint string, client *http.Client) *SpaceProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = defaultZImageSpace
	}
	return &SpaceProvider{
		token:    token,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
		stream:   DefaultStreamConfig(),
	}
}

// WithStreamConfig overrides the stream attempt budget. Used by tests.
func (p *SpaceProvider) WithStreamConfig(cfg PollConfig) *SpaceProvider {
	p.stream = cfg
	return p
}

// Generate submits the ordered payload array and awaits the image URL on
// the event stream.
//
// The payload order is fixed by the space's exposed endpoint:
// [prompt, decorated resolution, seed, steps, time shift, false, []].
func (p *SpaceProvider) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	payload := map[string]any{
		"data": []any{
			req.Prompt,
			SpaceFormatFor(req.Resolution),
			req.Seed,
			req.Steps,
			req.TimeShift,
			false,
			[]any{},
		},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", errMalformedResponse(ProviderZImage, fmt.Sprintf("unencodable payload: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+spaceCallPath, bytes.NewReader(encoded))
	if err != nil {
		return "", errMalformedResponse(ProviderZImage, fmt.Sprintf("bad request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers() {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", &GenError{
			Kind:     KindRequestRejected,
			Provider: ProviderZImage,
			Message:  fmt.Sprintf("job submission failed: %v", err),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errMalformedResponse(ProviderZImage, fmt.Sprintf("unreadable response: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifyHTTPFailure(ProviderZImage, resp.StatusCode, string(body))
	}

	var submitted struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(body, &submitted); err != nil || submitted.EventID == "" {
		return "", errMalformedResponse(ProviderZImage, "job submission returned no event id")
	}

	eventURL := p.endpoint + spaceCallPath + "/" + submitted.EventID
	return awaitStreamResult(ctx, p.client, ProviderZImage, eventURL, p.headers(), p.stream)
}

func (p *SpaceProvider) headers() map[string]string {
	if p.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + p.token}
}

var _ Provider = (*SpaceProvider)(nil)
