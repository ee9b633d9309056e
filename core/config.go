// Package core holds the process-wide configuration and startup plumbing for
// the sweater designer backend: environment loading, configuration errors,
// exit codes and the shared HTTP client.
package core

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zhlf2008/AI-Sweater-Designer/imagegen"
)

// Config holds all configuration values for one process.
type Config struct {
	// Provider selects the default image generation back-end.
	Provider imagegen.ProviderID

	// Per-provider API keys. All optional; generation with an
	// unconfigured provider fails with a classified error at call time,
	// not at startup.
	GeminiAPIKey     string
	HFToken          string
	ModelScopeAPIKey string
	DashScopeAPIKey  string
	OpenAIAPIKey     string

	// Optional per-provider endpoint overrides.
	GeminiEndpoint     string
	ZImageSpaceURL     string
	ModelScopeEndpoint string
	DashScopeEndpoint  string
	OpenAIEndpoint     string

	// CORSProxyURL is the URL prefix for providers that block
	// cross-origin calls.
	CORSProxyURL string

	// Generation tunables (0 means provider default).
	ImageSteps     int
	ImageTimeShift float64

	// Server configuration.
	Port          int
	WebUIPassword string
	IsDevelopment bool

	// Storage paths.
	DataDir      string
	StylesPath   string // optional custom styles catalog
	DatabasePath string
	LogFilePath  string

	// Network configuration.
	RequestTimeout       time.Duration
	AllowSelfSignedCerts bool
}

// defaultRequestTimeoutSeconds is long by design: one generation call can
// hold a poll loop open for two minutes.
const defaultRequestTimeoutSeconds = 180

// LoadConfig loads configuration from environment variables. Only the
// default provider name is validated here; credentials are all optional.
func LoadConfig() (*Config, error) {
	providerName := GetEnvOrDefault("IMAGE_PROVIDER", string(imagegen.ProviderGemini))
	provider, err := imagegen.ParseProviderID(providerName)
	if err != nil {
		return nil, ErrInvalidProvider(providerName)
	}

	port := ParseIntEnv("PORT", 8080)
	if port < 1 || port > 65535 {
		return nil, ErrInvalidPort(port)
	}

	if proxy := os.Getenv("CORS_PROXY_URL"); proxy != "" {
		if _, err := url.Parse(proxy); err != nil || !strings.Contains(proxy, "://") {
			return nil, ErrInvalidProxyURL(proxy)
		}
	}

	dataDir := GetEnvOrDefault("DATA_DIR", "./data")

	cfg := &Config{
		Provider: provider,

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		HFToken:          os.Getenv("HF_TOKEN"),
		ModelScopeAPIKey: os.Getenv("MODELSCOPE_API_KEY"),
		DashScopeAPIKey:  os.Getenv("DASHSCOPE_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),

		GeminiEndpoint:     os.Getenv("GEMINI_ENDPOINT"),
		ZImageSpaceURL:     os.Getenv("ZIMAGE_SPACE_URL"),
		ModelScopeEndpoint: os.Getenv("MODELSCOPE_ENDPOINT"),
		DashScopeEndpoint:  os.Getenv("DASHSCOPE_ENDPOINT"),
		OpenAIEndpoint:     os.Getenv("OPENAI_ENDPOINT"),

		CORSProxyURL: os.Getenv("CORS_PROXY_URL"),

		ImageSteps:     ParseIntEnv("IMAGE_STEPS", 0),
		ImageTimeShift: ParseFloat64Env("IMAGE_TIME_SHIFT", 0),

		Port:          port,
		WebUIPassword: os.Getenv("WEBUI_PASSWORD"),
		IsDevelopment: ParseBoolEnv("DEV_MODE", false),

		DataDir:      dataDir,
		StylesPath:   os.Getenv("STYLES_PATH"),
		DatabasePath: GetEnvOrDefault("DATABASE_PATH", filepath.Join(dataDir, "designer.db")),
		LogFilePath:  GetEnvOrDefault("LOG_FILE", filepath.Join(dataDir, "logs", "designer.log")),

		RequestTimeout:       ParseDurationEnv("REQUEST_TIMEOUT", defaultRequestTimeoutSeconds),
		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),
	}

	return cfg, nil
}

// GetHTTPClient returns an HTTP client configured per the settings.
// Self-signed certificates are only accepted when explicitly enabled;
// the option exists for corporate proxies that re-sign TLS traffic.
func (c *Config) GetHTTPClient() *http.Client {
	client := &http.Client{Timeout: c.RequestTimeout}
	if c.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client
}

// ImageSettings assembles the per-call generation settings from the loaded
// configuration. Overrides from the request layer are applied on top by the
// caller.
func (c *Config) ImageSettings() imagegen.Settings {
	return imagegen.Settings{
		Provider: c.Provider,
		Credentials: map[imagegen.ProviderID]string{
			imagegen.ProviderGemini:     c.GeminiAPIKey,
			imagegen.ProviderZImage:     c.HFToken,
			imagegen.ProviderModelScope: c.ModelScopeAPIKey,
			imagegen.ProviderDashScope:  c.DashScopeAPIKey,
			imagegen.ProviderOpenAI:     c.OpenAIAPIKey,
		},
		Endpoints: map[imagegen.ProviderID]string{
			imagegen.ProviderGemini:     c.GeminiEndpoint,
			imagegen.ProviderZImage:     c.ZImageSpaceURL,
			imagegen.ProviderModelScope: c.ModelScopeEndpoint,
			imagegen.ProviderDashScope:  c.DashScopeEndpoint,
			imagegen.ProviderOpenAI:     c.OpenAIEndpoint,
		},
		ProxyURL:  c.CORSProxyURL,
		Steps:     c.ImageSteps,
		TimeShift: c.ImageTimeShift,
	}
}

// ConfiguredProviders returns the providers that currently have a credential.
func (c *Config) ConfiguredProviders() []imagegen.ProviderID {
	settings := c.ImageSettings()
	var out []imagegen.ProviderID
	for _, p := range imagegen.AllProviders() {
		if strings.TrimSpace(settings.Credential(p)) != "" {
			out = append(out, p)
		}
	}
	return out
}

// String renders the configuration for startup logging with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{provider=%s port=%d dataDir=%s configuredProviders=%d dev=%v}",
		c.Provider, c.Port, c.DataDir, len(c.ConfiguredProviders()), c.IsDevelopment)
}
