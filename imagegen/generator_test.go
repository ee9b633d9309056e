package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zhlf2008/AI-Sweater-Designer/logging"
)

func newTestGenerator(t *testing.T, fallbackKey string, client *http.Client) *Generator {
	t.Helper()
	g, err := NewGenerator(NewCredentialResolver(fallbackKey), client, logging.NewNop())
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return g
}

func TestGeneratorOpenAIEndpointOverride(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/images/generations" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"created":1700000000,"data":[{"b64_json":"QQ=="}]}`)
	}))
	defer srv.Close()

	g := newTestGenerator(t, "", srv.Client())
	settings := Settings{
		Provider:    ProviderOpenAI,
		Credentials: map[ProviderID]string{ProviderOpenAI: "sk-test"},
		Endpoints:   map[ProviderID]string{ProviderOpenAI: srv.URL + "/v1"},
	}

	ref, err := g.Generate(context.Background(), "red wool sweater", "1024x1024", 1, settings)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if ref != "data:image/png;base64,QQ==" {
		t.Errorf("Generate() = %q", ref)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestGeneratorServerErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "internal error")
	}))
	defer srv.Close()

	g := newTestGenerator(t, "", srv.Client())
	settings := Settings{
		Provider:    ProviderOpenAI,
		Credentials: map[ProviderID]string{ProviderOpenAI: "sk-test"},
		Endpoints:   map[ProviderID]string{ProviderOpenAI: srv.URL + "/v1"},
	}

	_, err := g.Generate(context.Background(), "red wool sweater", "1024x1024", 1, settings)
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

func TestGeneratorMissingCredential(t *testing.T) {
	transport := &countingTransport{}
	g := newTestGenerator(t, "", &http.Client{Transport: transport})

	for _, provider := range []ProviderID{ProviderGemini, ProviderModelScope, ProviderDashScope, ProviderOpenAI} {
		_, err := g.Generate(context.Background(), "prompt", "1024x1024", 0, Settings{Provider: provider})
		if !IsKind(err, KindMissingCredential) {
			t.Errorf("Generate(%s) error = %v, want missing credential", provider, err)
		}
	}
	if transport.calls != 0 {
		t.Errorf("missing credentials triggered %d network calls, want 0", transport.calls)
	}
}

func TestGeneratorGeminiFallbackKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"QQ=="}}]}}]}`)
	}))
	defer srv.Close()

	g := newTestGenerator(t, "fallback-key", srv.Client())
	settings := Settings{
		Provider:  ProviderGemini,
		Endpoints: map[ProviderID]string{ProviderGemini: srv.URL},
	}

	if _, err := g.Generate(context.Background(), "prompt", "1024x1024", 0, settings); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotKey != "fallback-key" {
		t.Errorf("api key = %q, want process fallback", gotKey)
	}
}

func TestGeneratorRejectsInvalidInput(t *testing.T) {
	g := newTestGenerator(t, "", nil)

	if _, err := g.Generate(context.Background(), "", "1024x1024", 0, Settings{Provider: ProviderGemini}); err == nil {
		t.Error("empty prompt accepted")
	}
	if _, err := g.Generate(context.Background(), "prompt", "1024x1024", 0, Settings{Provider: "midjourney"}); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestNewGenerationRequestDefaults(t *testing.T) {
	req := NewGenerationRequest("p", "864x1152", 9, Settings{})
	if req.Steps != DefaultSteps {
		t.Errorf("Steps = %d, want default %d", req.Steps, DefaultSteps)
	}
	if req.TimeShift != DefaultTimeShift {
		t.Errorf("TimeShift = %v, want default %v", req.TimeShift, DefaultTimeShift)
	}

	req = NewGenerationRequest("p", "864x1152", 9, Settings{Steps: 12, TimeShift: 1.5})
	if req.Steps != 12 || req.TimeShift != 1.5 {
		t.Errorf("tunables not taken from settings: %+v", req)
	}
}
