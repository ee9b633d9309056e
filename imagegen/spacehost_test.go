package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fastStream(maxAttempts int) PollConfig {
	return PollConfig{MaxAttempts: maxAttempts, Interval: time.Millisecond}
}

func TestSpaceProviderGenerate(t *testing.T) {
	var submitted struct {
		Data []any `json:"data"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == spaceCallPath:
			if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
				t.Errorf("decoding submission: %v", err)
			}
			fmt.Fprint(w, `{"event_id":"ev-42"}`)
		case r.Method == http.MethodGet && r.URL.Path == spaceCallPath+"/ev-42":
			fmt.Fprint(w, "event: heartbeat\nevent: complete\ndata: [{\"image\":{\"url\":\"https://cdn.example/sweater.png\"}},5]\n")
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewSpaceProvider("", srv.URL, srv.Client()).WithStreamConfig(fastStream(5))
	req := &GenerationRequest{Prompt: "cable-knit sweater", Resolution: "864x1152", Seed: 7, Steps: 20, TimeShift: 3.0}

	url, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if url != "https://cdn.example/sweater.png" {
		t.Errorf("Generate() = %q", url)
	}

	if len(submitted.Data) != 7 {
		t.Fatalf("payload has %d elements, want 7", len(submitted.Data))
	}
	if submitted.Data[0] != "cable-knit sweater" {
		t.Errorf("payload prompt = %v", submitted.Data[0])
	}
	if submitted.Data[1] != "864x1152 ( 3:4 )" {
		t.Errorf("payload resolution = %v", submitted.Data[1])
	}
}

func TestSpaceProviderSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{"event_id":"ev-1"}`)
			return
		}
		fmt.Fprint(w, "data: [{\"url\":\"https://cdn.example/a.png\"}]\n")
	}))
	defer srv.Close()

	p := NewSpaceProvider("hf_secret", srv.URL, srv.Client()).WithStreamConfig(fastStream(3))
	if _, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotAuth != "Bearer hf_secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestSpaceProviderTimesOutOnHeartbeatOnlyStream(t *testing.T) {
	streamHits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"event_id":"ev-2"}`)
			return
		}
		streamHits++
		fmt.Fprint(w, "event: heartbeat\n")
	}))
	defer srv.Close()

	p := NewSpaceProvider("", srv.URL, srv.Client()).WithStreamConfig(fastStream(4))
	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindTimeout) {
		t.Fatalf("Generate() error = %v, want timeout", err)
	}
	if streamHits != 4 {
		t.Errorf("stream fetched %d times, want 4", streamHits)
	}
}

func TestSpaceProviderSubmissionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "invalid token")
	}))
	defer srv.Close()

	p := NewSpaceProvider("bad", srv.URL, srv.Client()).WithStreamConfig(fastStream(2))
	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindAuthRejected) {
		t.Fatalf("Generate() error = %v, want auth rejection", err)
	}
	ge, _ := AsGenError(err)
	if ge.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("HTTPStatus = %d", ge.HTTPStatus)
	}
	if !strings.Contains(ge.Message, "invalid token") {
		t.Errorf("message %q missing response body", ge.Message)
	}
}

func TestSpaceProviderMissingEventID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	p := NewSpaceProvider("", srv.URL, srv.Client())
	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindMalformedResponse) {
		t.Fatalf("Generate() error = %v, want malformed response", err)
	}
}
