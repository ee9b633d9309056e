// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// dashscope.go implements the second submit-and-poll adapter. It differs
// from modelscope.go in request shape only: the size uses a * separator,
// the async flag is a different header, and the result sits under a nested
// output.results path.
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
	defaultDashScopeBase  = "https://dashscope.aliyuncs.com"
	defaultDashScopeModel = "wan2.2-t2i-flash"

	dashScopeSubmitPath = "/api/v1/services/aigc/text2image/image-synthesis"
	dashScopeTaskPath   = "/api/v1/tasks/"
)

// DashScopeProvider implements Provider for the text2image task API.
type DashScopeProvider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
	poll     PollConfig
}

// NewDashScopeProvider creates the adapter. endpoint may be "".
func NewDashScopeProvider(apiKey, endpoint string, client *http.Client) (*DashScopeProvider, error) {
	if apiKey == "" {
		return nil, errMissingCredential(ProviderDashScope)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = defaultDashScopeBase
	}
	return &DashScopeProvider{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    defaultDashScopeModel,
		client:   client,
		poll:     DefaultPollConfig(),
	}, nil
}

// WithPollConfig overrides the poll budget. Used by tests.
func (p *DashScopeProvider) WithPollConfig(cfg PollConfig) *DashScopeProvider {
	p.poll = cfg
	return p
}

type dashScopeSubmitRequest struct {
	Model string `json:"model"`
	Input struct {
		Prompt string `json:"prompt"`
	} `json:"input"`
	Parameters struct {
		Size string `json:"size"`
		Seed int64  `json:"seed"`
		N    int    `json:"n"`
	} `json:"parameters"`
}

type dashScopeSubmitResponse struct {
	Output struct {
		TaskID string `json:"task_id"`
	} `json:"output"`
	Message string `json:"message"`
}

type dashScopeTaskResponse struct {
	Output struct {
		TaskStatus string `json:"task_status"`
		Results    []struct {
			URL string `json:"url"`
		} `json:"results"`
		Message string `json:"message"`
	} `json:"output"`
	Message string `json:"message"`
}

// Generate submits the job and polls the task endpoint until the first
// result URL is available.
func (p *DashScopeProvider) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	var submitBody dashScopeSubmitRequest
	submitBody.Model = p.model
	submitBody.Input.Prompt = req.Prompt
	submitBody.Parameters.Size = TaskSizeFor(req.Resolution)
	submitBody.Parameters.Seed = req.Seed
	submitBody.Parameters.N = 1

	status, body, err := p.do(ctx, http.MethodPost, dashScopeSubmitPath, map[string]string{
		"X-DashScope-Async": "enable",
	}, submitBody)
	if err != nil {
		return "", &GenError{
			Kind:     KindRequestRejected,
			Provider: ProviderDashScope,
			Message:  fmt.Sprintf("job submission failed: %v", err),
			Err:      err,
		}
	}
	if status < 200 || status >= 300 {
		return "", classifyHTTPFailure(ProviderDashScope, status, body)
	}

	var submitted dashScopeSubmitResponse
	if err := json.Unmarshal([]byte(body), &submitted); err != nil || submitted.Output.TaskID == "" {
		return "", errMalformedResponse(ProviderDashScope, "job submission returned no task id")
	}

	return PollTask(ctx, ProviderDashScope, p.poll, func(ctx context.Context) (TaskSnapshot, error) {
		return p.fetchTask(ctx, submitted.Output.TaskID)
	})
}

// fetchTask reads one task status snapshot.
func (p *DashScopeProvider) fetchTask(ctx context.Context, taskID string) (TaskSnapshot, error) {
	status, body, err := p.do(ctx, http.MethodGet, dashScopeTaskPath+taskID, nil, nil)
	if err != nil {
		return TaskSnapshot{}, err
	}
	if status < 200 || status >= 300 {
		if status == 401 || status == 403 {
			return TaskSnapshot{
				Status:  TaskFailed,
				Message: fmt.Sprintf("authentication rejected during polling (HTTP %d)", status),
			}, nil
		}
		return TaskSnapshot{}, fmt.Errorf("task status fetch returned HTTP %d", status)
	}

	var task dashScopeTaskResponse
	if err := json.Unmarshal([]byte(body), &task); err != nil {
		return TaskSnapshot{}, err
	}

	snap := TaskSnapshot{Status: decodeDashScopeStatus(task.Output.TaskStatus)}
	switch snap.Status {
	case TaskSucceeded:
		if len(task.Output.Results) > 0 {
			snap.Result = task.Output.Results[0].URL
		}
	case TaskFailed, TaskCanceled:
		snap.Message = task.Output.Message
		if snap.Message == "" {
			snap.Message = task.Message
		}
	}
	return snap, nil
}

func decodeDashScopeStatus(s string) TaskStatus {
	switch strings.ToUpper(s) {
	case "PENDING":
		return TaskPending
	case "RUNNING":
		return TaskRunning
	case "SUCCEEDED":
		return TaskSucceeded
	case "FAILED":
		return TaskFailed
	case "CANCELED", "CANCELLED":
		return TaskCanceled
	}
	return TaskUnknown
}

func (p *DashScopeProvider) do(ctx context.Context, method, path string, extraHeaders map[string]string, payload any) (int, string, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, "", err
		}
		reqBody = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, p.endpoint+path, reqBody)
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

var _ Provider = (*DashScopeProvider)(nil)
