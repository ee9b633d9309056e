// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// modelscope.go implements the first submit-and-poll adapter. The job is
// submitted in async mode, answered with a task id, and the task endpoint is
// polled through poller.go until the first generated image URL appears.
//
// Browsers cannot call this API directly (no CORS headers), so a proxy URL
// prefix is injectable; a transport-level failure without one is surfaced as
// the actionable NetworkBlocked error instead of a generic failure.
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
	defaultModelScopeBase  = "https://api-inference.modelscope.cn"
	defaultModelScopeModel = "Qwen/Qwen-Image"

	// modelScopeProxyHint tells the user how to get past the CORS block.
	modelScopeProxyHint = "the request could not leave the browser; this provider blocks cross-origin calls, configure a CORS proxy (CORS_PROXY_URL) and try again"
)

// ModelScopeProvider implements Provider for the async-mode task API.
type ModelScopeProvider struct {
	apiKey   string
	endpoint string
	proxy    string
	model    string
	client   *http.Client
	poll     PollConfig
}

// NewModelScopeProvider creates the adapter. endpoint and proxy may be "".
func NewModelScopeProvider(apiKey, endpoint, proxy string, client *http.Client) (*ModelScopeProvider, error) {
	if apiKey == "" {
		return nil, errMissingCredential(ProviderModelScope)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = defaultModelScopeBase
	}
	return &ModelScopeProvider{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		proxy:    proxy,
		model:    defaultModelScopeModel,
		client:   client,
		poll:     DefaultPollConfig(),
	}, nil
}

// WithPollConfig overrides the poll budget. Used by tests.
func (p *ModelScopeProvider) WithPollConfig(cfg PollConfig) *ModelScopeProvider {
	p.poll = cfg
	return p
}

type modelScopeSubmitRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	Seed   int64  `json:"seed"`
	Steps  int    `json:"num_inference_steps,omitempty"`
}

type modelScopeSubmitResponse struct {
	TaskID string `json:"task_id"`
}

type modelScopeTaskResponse struct {
	TaskStatus   string   `json:"task_status"`
	OutputImages []string `json:"output_images"`
	Errors       struct {
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// Generate submits the job and polls the task endpoint until the first
// output image URL is available.
func (p *ModelScopeProvider) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	submitBody := modelScopeSubmitRequest{
		Model:  p.model,
		Prompt: req.Prompt,
		Size:   NormalizeResolution(req.Resolution),
		Seed:   req.Seed,
		Steps:  req.Steps,
	}

	status, body, err := p.do(ctx, http.MethodPost, "/v1/images/generations", map[string]string{
		"X-ModelScope-Async-Mode": "true",
	}, submitBody)
	if err != nil {
		return "", errNetworkBlocked(ProviderModelScope, p.blockedHint(), err)
	}
	if status < 200 || status >= 300 {
		return "", classifyHTTPFailure(ProviderModelScope, status, body)
	}

	var submitted modelScopeSubmitResponse
	if err := json.Unmarshal([]byte(body), &submitted); err != nil || submitted.TaskID == "" {
		return "", errMalformedResponse(ProviderModelScope, "job submission returned no task id")
	}

	return PollTask(ctx, ProviderModelScope, p.poll, func(ctx context.Context) (TaskSnapshot, error) {
		return p.fetchTask(ctx, submitted.TaskID)
	})
}

// fetchTask reads one task status snapshot.
func (p *ModelScopeProvider) fetchTask(ctx context.Context, taskID string) (TaskSnapshot, error) {
	status, body, err := p.do(ctx, http.MethodGet, "/v1/tasks/"+taskID, map[string]string{
		"X-ModelScope-Task-Type": "image_generation",
	}, nil)
	if err != nil {
		return TaskSnapshot{}, err
	}
	if status < 200 || status >= 300 {
		// Auth failures abort the poll; anything else is transient.
		if status == 401 || status == 403 {
			return TaskSnapshot{
				Status:  TaskFailed,
				Message: fmt.Sprintf("authentication rejected during polling (HTTP %d)", status),
			}, nil
		}
		return TaskSnapshot{}, fmt.Errorf("task status fetch returned HTTP %d", status)
	}

	var task modelScopeTaskResponse
	if err := json.Unmarshal([]byte(body), &task); err != nil {
		return TaskSnapshot{}, err
	}

	snap := TaskSnapshot{Status: decodeModelScopeStatus(task.TaskStatus)}
	switch snap.Status {
	case TaskSucceeded:
		if len(task.OutputImages) > 0 {
			snap.Result = task.OutputImages[0]
		}
	case TaskFailed, TaskCanceled:
		snap.Message = task.Errors.Message
		if snap.Message == "" {
			snap.Message = task.Message
		}
	}
	return snap, nil
}

// decodeModelScopeStatus maps the wire status codes onto the normalized
// task statuses. Anything unexpected keeps the poll running until timeout.
func decodeModelScopeStatus(s string) TaskStatus {
	switch strings.ToUpper(s) {
	case "PENDING":
		return TaskPending
	case "RUNNING", "PROCESSING":
		return TaskRunning
	case "SUCCEED", "SUCCEEDED":
		return TaskSucceeded
	case "FAILED":
		return TaskFailed
	case "CANCELED", "CANCELLED":
		return TaskCanceled
	}
	return TaskUnknown
}

// do issues one request through the optional proxy prefix.
func (p *ModelScopeProvider) do(ctx context.Context, method, path string, extraHeaders map[string]string, payload any) (int, string, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, "", err
		}
		reqBody = bytes.NewReader(encoded)
	}

	url := joinProxy(p.proxy, p.endpoint+path)
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range extraHeaders {
		httpReq.Header.Set(k, v)
	}

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

// blockedHint returns the actionable message for a transport-level failure.
// Without a proxy the failure is almost certainly the known CORS block.
func (p *ModelScopeProvider) blockedHint() string {
	if p.proxy == "" {
		return modelScopeProxyHint
	}
	return "the request failed at the network level even through the configured proxy; check the proxy URL"
}

var _ Provider = (*ModelScopeProvider)(nil)
