package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiProviderGenerate(t *testing.T) {
	var gotKey string
	var gotReq geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"aW1n"}}]}}]}`)
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("AIza-test", srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewGeminiProvider() error = %v", err)
	}

	url, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "red wool sweater", Resolution: "768x1344"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if url != "data:image/png;base64,aW1n" {
		t.Errorf("Generate() = %q", url)
	}
	if gotKey != "AIza-test" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotReq.GenerationConfig.ImageConfig == nil || gotReq.GenerationConfig.ImageConfig.AspectRatio != "9:16" {
		t.Errorf("aspect ratio = %+v", gotReq.GenerationConfig.ImageConfig)
	}
	if len(gotReq.GenerationConfig.ResponseModalities) != 1 || gotReq.GenerationConfig.ResponseModalities[0] != "IMAGE" {
		t.Errorf("response modalities = %v", gotReq.GenerationConfig.ResponseModalities)
	}
}

func TestGeminiProviderEmptyKeyRejectedUpfront(t *testing.T) {
	_, err := NewGeminiProvider("", "", nil)
	if !IsKind(err, KindMissingCredential) {
		t.Fatalf("NewGeminiProvider() error = %v, want missing credential", err)
	}
}

func TestGeminiProviderAuthRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"API key not valid"}}`)
	}))
	defer srv.Close()

	p, _ := NewGeminiProvider("bad-key", srv.URL, srv.Client())
	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindAuthRejected) {
		t.Fatalf("Generate() error = %v, want auth rejection", err)
	}
}

func TestGeminiProviderRequestRejectedCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "internal error")
	}))
	defer srv.Close()

	p, _ := NewGeminiProvider("key", srv.URL, srv.Client())
	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindRequestRejected) {
		t.Fatalf("Generate() error = %v, want request rejection", err)
	}
	ge, _ := AsGenError(err)
	if ge.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d", ge.HTTPStatus)
	}
	if !strings.Contains(ge.Message, "internal error") {
		t.Errorf("message %q missing response body", ge.Message)
	}
}

func TestGeminiProviderNoImageIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"cannot generate that"}]}}]}`)
	}))
	defer srv.Close()

	p, _ := NewGeminiProvider("key", srv.URL, srv.Client())
	_, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if !IsKind(err, KindMalformedResponse) {
		t.Fatalf("Generate() error = %v, want malformed response", err)
	}
}

func TestGeminiProviderDefaultsMimeType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"QQ=="}}]}}]}`)
	}))
	defer srv.Close()

	p, _ := NewGeminiProvider("key", srv.URL, srv.Client())
	url, err := p.Generate(context.Background(), &GenerationRequest{Prompt: "p", Resolution: ResolutionSquare})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if url != "data:image/png;base64,QQ==" {
		t.Errorf("Generate() = %q", url)
	}
}
