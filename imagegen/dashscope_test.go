package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDashScopeProviderGenerate(t *testing.T) {
	taskPolls := 0
	var gotSubmit dashScopeSubmitRequest
	var gotAsyncHeader, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == dashScopeSubmitPath:
			gotAsyncHeader = r.Header.Get("X-DashScope-Async")
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotSubmit); err != nil {
				t.Errorf("decoding submission: %v", err)
			}
			fmt.Fprint(w, `{"output":{"task_id":"ds-task-1"}}`)
		case r.Method == http.MethodGet && r.URL.Path == dashScopeTaskPath+"ds-task-1":
			taskPolls++
			if taskPolls == 1 {
				fmt.Fprint(w, `{"output":{"task_status":"RUNNING"}}`)
				return
			}
			fmt.Fprint(w, `{"output":{"task_status":"SUCCEEDED","results":[{"url":"https://ds.example/img.png"}]}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p, err := NewDashScopeProvider("ds-key", srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewDashScopeProvider() error = %v", err)
	}
	p.WithPollConfig(fastPoll(10))

	url, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "aran sweater", Resolution: "1344x768", Seed: 11})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if url != "https://ds.example/img.png" {
		t.Errorf("Generate() = %q", url)
	}
	if taskPolls != 2 {
		t.Errorf("task polled %d times, want 2", taskPolls)
	}
	if gotAsyncHeader != "enable" {
		t.Errorf("async header = %q", gotAsyncHeader)
	}
	if gotAuth != "Bearer ds-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotSubmit.Parameters.Size != "1344*768" {
		t.Errorf("submitted size = %q, want star separator", gotSubmit.Parameters.Size)
	}
	if gotSubmit.Input.Prompt != "aran sweater" {
		t.Errorf("submitted prompt = %q", gotSubmit.Input.Prompt)
	}
}

func TestDashScopeProviderSubmissionAuthRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Invalid API-key provided."}`)
	}))
	defer srv.Close()

	p, _ := NewDashScopeProvider("bad", srv.URL, srv.Client())
	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindAuthRejected) {
		t.Fatalf("Generate() error = %v, want auth rejection", err)
	}
}

func TestDashScopeProviderTaskFailureMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"output":{"task_id":"ds-task-2"}}`)
			return
		}
		fmt.Fprint(w, `{"output":{"task_status":"FAILED","message":"input data inspection failed"}}`)
	}))
	defer srv.Close()

	p, _ := NewDashScopeProvider("ds-key", srv.URL, srv.Client())
	p.WithPollConfig(fastPoll(10))

	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindRemoteTaskFailed) {
		t.Fatalf("Generate() error = %v, want remote task failure", err)
	}
	ge, _ := AsGenError(err)
	if ge.Message != "input data inspection failed" {
		t.Errorf("failure message = %q", ge.Message)
	}
}

func TestDashScopeProviderMissingTaskID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"output":{}}`)
	}))
	defer srv.Close()

	p, _ := NewDashScopeProvider("ds-key", srv.URL, srv.Client())
	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindMalformedResponse) {
		t.Fatalf("Generate() error = %v, want malformed response", err)
	}
}

func TestDecodeDashScopeStatus(t *testing.T) {
	tests := []struct {
		wire string
		want TaskStatus
	}{
		{"PENDING", TaskPending},
		{"RUNNING", TaskRunning},
		{"SUCCEEDED", TaskSucceeded},
		{"FAILED", TaskFailed},
		{"CANCELED", TaskCanceled},
		{"UNKNOWN", TaskUnknown},
		{"", TaskUnknown},
	}
	for _, tt := range tests {
		if got := decodeDashScopeStatus(tt.wire); got != tt.want {
			t.Errorf("decodeDashScopeStatus(%q) = %v, want %v", tt.wire, got, tt.want)
		}
	}
}
