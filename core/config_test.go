package core

import (
	"testing"

	"github.com/zhlf2008/AI-Sweater-Designer/imagegen"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Provider != imagegen.ProviderGemini {
		t.Errorf("default provider = %s", cfg.Provider)
	}
	if cfg.Port != 8080 {
		t.Errorf("default port = %d", cfg.Port)
	}
	if cfg.DatabasePath == "" || cfg.LogFilePath == "" {
		t.Error("storage paths not derived from data dir")
	}
}

func TestLoadConfigProviderSelection(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "dashscope")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Provider != imagegen.ProviderDashScope {
		t.Errorf("provider = %s", cfg.Provider)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "midjourney")
	_, err := LoadConfig()
	if err == nil {
		t.Fatal("unknown provider accepted")
	}
	if GetErrorCode(err) != ErrCodeInvalidProvider {
		t.Errorf("error code = %q", GetErrorCode(err))
	}
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	_, err := LoadConfig()
	if GetErrorCode(err) != ErrCodeInvalidPort {
		t.Fatalf("LoadConfig() error = %v, want invalid port", err)
	}
}

func TestLoadConfigRejectsBadProxyURL(t *testing.T) {
	t.Setenv("CORS_PROXY_URL", "not a url")
	_, err := LoadConfig()
	if GetErrorCode(err) != ErrCodeInvalidProxyURL {
		t.Fatalf("LoadConfig() error = %v, want invalid proxy URL", err)
	}
}

func TestImageSettings(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "modelscope")
	t.Setenv("MODELSCOPE_API_KEY", "ms-key")
	t.Setenv("CORS_PROXY_URL", "https://proxy.example/?")
	t.Setenv("IMAGE_STEPS", "12")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	s := cfg.ImageSettings()
	if s.Provider != imagegen.ProviderModelScope {
		t.Errorf("settings provider = %s", s.Provider)
	}
	if s.Credential(imagegen.ProviderModelScope) != "ms-key" {
		t.Errorf("credential = %q", s.Credential(imagegen.ProviderModelScope))
	}
	if s.ProxyURL != "https://proxy.example/?" {
		t.Errorf("proxy = %q", s.ProxyURL)
	}
	if s.Steps != 12 {
		t.Errorf("steps = %d", s.Steps)
	}
}

func TestConfiguredProviders(t *testing.T) {
	for _, v := range []string{"GEMINI_API_KEY", "HF_TOKEN", "MODELSCOPE_API_KEY", "DASHSCOPE_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(v, "")
	}
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "sk-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	configured := cfg.ConfiguredProviders()
	if len(configured) != 2 {
		t.Fatalf("configured = %v", configured)
	}
}
