package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnhancePrompt(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  a chunky cream cable-knit sweater, soft merino wool  "}}]}`)
	}))
	defer srv.Close()

	settings := Settings{
		Credentials: map[ProviderID]string{ProviderOpenAI: "sk-test"},
		Endpoints:   map[ProviderID]string{ProviderOpenAI: srv.URL + "/v1"},
	}

	enhanced, err := EnhancePrompt(context.Background(), NewCredentialResolver(""), settings, srv.Client(), "cream sweater")
	if err != nil {
		t.Fatalf("EnhancePrompt() error = %v", err)
	}
	if enhanced != "a chunky cream cable-knit sweater, soft merino wool" {
		t.Errorf("EnhancePrompt() = %q, want trimmed content", enhanced)
	}

	if len(gotReq.Messages) != 2 {
		t.Fatalf("sent %d messages, want system + user", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "cream sweater" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestEnhancePromptMissingCredential(t *testing.T) {
	_, err := EnhancePrompt(context.Background(), NewCredentialResolver(""), Settings{}, nil, "prompt")
	if !IsKind(err, KindMissingCredential) {
		t.Fatalf("EnhancePrompt() error = %v, want missing credential", err)
	}
}

func TestEnhancePromptEmptyInput(t *testing.T) {
	if _, err := EnhancePrompt(context.Background(), NewCredentialResolver("k"), Settings{}, nil, "   "); err == nil {
		t.Error("blank prompt accepted")
	}
}
