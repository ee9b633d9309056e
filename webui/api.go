package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhlf2008/AI-Sweater-Designer/db"
	"github.com/zhlf2008/AI-Sweater-Designer/imagegen"
	"github.com/zhlf2008/AI-Sweater-Designer/styles"
)

// Generator is the generation facade the API dispatches to.
type Generator interface {
	Generate(ctx context.Context, prompt, resolution string, seed int64, s imagegen.Settings) (string, error)
}

// Verifier checks provider credentials for the settings surface.
type Verifier interface {
	Verify(ctx context.Context, provider imagegen.ProviderID, credential, endpoint, proxy string) bool
}

// Enhancer rewrites prompts. Split from Generator so tests can stub it.
type Enhancer func(ctx context.Context, s imagegen.Settings, prompt string) (string, error)

// History records and lists past generations.
type History interface {
	InsertGeneration(ctx context.Context, rec *db.GenerationRecord) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]db.GenerationRecord, error)
}

// API implements the JSON endpoints.
type API struct {
	generator    Generator
	verifier     Verifier
	enhancer     Enhancer
	history      History
	catalog      *styles.Catalog
	baseSettings func() imagegen.Settings
	logger       *zap.Logger
}

// NewAPI wires the endpoint handlers. history may be nil to disable
// persistence (some deployments keep no record of generated designs).
func NewAPI(
	generator Generator,
	verifier Verifier,
	enhancer Enhancer,
	history History,
	catalog *styles.Catalog,
	baseSettings func() imagegen.Settings,
	logger *zap.Logger,
) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		generator:    generator,
		verifier:     verifier,
		enhancer:     enhancer,
		history:      history,
		catalog:      catalog,
		baseSettings: baseSettings,
		logger:       logger,
	}
}

// Register installs the API routes onto the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", a.handleHealth)
	mux.HandleFunc("/api/styles", a.handleStyles)
	mux.HandleFunc("/api/generate", a.handleGenerate)
	mux.HandleFunc("/api/enhance", a.handleEnhance)
	mux.HandleFunc("/api/verify", a.handleVerify)
	mux.HandleFunc("/api/history", a.handleHistory)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":  a.catalog.Categories,
		"resolutions": imagegen.SupportedResolutions(),
		"providers":   imagegen.AllProviders(),
	})
}

// generateRequest is the body of POST /api/generate. Either a raw prompt
// or a selection (plus optional free text) must be present.
type generateRequest struct {
	Provider   string           `json:"provider,omitempty"`
	Prompt     string           `json:"prompt,omitempty"`
	Selection  styles.Selection `json:"selection,omitempty"`
	FreeText   string           `json:"free_text,omitempty"`
	Resolution string           `json:"resolution,omitempty"`
	Seed       int64            `json:"seed,omitempty"`
	APIKey     string           `json:"api_key,omitempty"`
	Endpoint   string           `json:"endpoint,omitempty"`
}

func (a *API) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		assembled, err := a.catalog.BuildPrompt(req.Selection, req.FreeText)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		prompt = assembled
	}

	settings, err := a.settingsFor(req.Provider, req.APIKey, req.Endpoint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resolution := imagegen.NormalizeResolution(req.Resolution)

	start := time.Now()
	ref, err := a.generator.Generate(r.Context(), prompt, resolution, req.Seed, settings)
	elapsed := time.Since(start)

	a.recordGeneration(r.Context(), settings.Provider, prompt, resolution, req.Seed, ref, err, elapsed)

	if err != nil {
		a.writeGenError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"image":      ref,
		"prompt":     prompt,
		"resolution": resolution,
		"provider":   settings.Provider,
	})
}

func (a *API) handleEnhance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
		APIKey string `json:"api_key,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	settings := a.baseSettings()
	if req.APIKey != "" {
		overrideCredential(&settings, imagegen.ProviderOpenAI, req.APIKey)
	}

	enhanced, err := a.enhancer(r.Context(), settings, req.Prompt)
	if err != nil {
		a.writeGenError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prompt": enhanced})
}

func (a *API) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Provider string `json:"provider"`
		APIKey   string `json:"api_key"`
		Endpoint string `json:"endpoint,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider, err := imagegen.ParseProviderID(req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := a.baseSettings()
	ok := a.verifier.Verify(r.Context(), provider, req.APIKey, req.Endpoint, settings.ProxyURL)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if a.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"records": []db.GenerationRecord{}})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	records, err := a.history.ListRecent(r.Context(), limit)
	if err != nil {
		a.logger.Error("history query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if records == nil {
		records = []db.GenerationRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

// settingsFor assembles call settings from the base configuration plus
// the request's per-call overrides.
func (a *API) settingsFor(providerName, apiKey, endpoint string) (imagegen.Settings, error) {
	settings := a.baseSettings()

	if providerName != "" {
		provider, err := imagegen.ParseProviderID(providerName)
		if err != nil {
			return imagegen.Settings{}, err
		}
		settings.Provider = provider
	}
	if apiKey != "" {
		overrideCredential(&settings, settings.Provider, apiKey)
	}
	if endpoint != "" {
		overrideEndpoint(&settings, settings.Provider, endpoint)
	}
	return settings, nil
}

func overrideCredential(s *imagegen.Settings, p imagegen.ProviderID, key string) {
	creds := make(map[imagegen.ProviderID]string, len(s.Credentials)+1)
	for k, v := range s.Credentials {
		creds[k] = v
	}
	creds[p] = key
	s.Credentials = creds
}

func overrideEndpoint(s *imagegen.Settings, p imagegen.ProviderID, endpoint string) {
	endpoints := make(map[imagegen.ProviderID]string, len(s.Endpoints)+1)
	for k, v := range s.Endpoints {
		endpoints[k] = v
	}
	endpoints[p] = endpoint
	s.Endpoints = endpoints
}

// recordGeneration persists one attempt, success or failure. History
// failures are logged, never surfaced: losing a record must not fail a
// generation that succeeded.
func (a *API) recordGeneration(ctx context.Context, provider imagegen.ProviderID, prompt, resolution string, seed int64, ref string, genErr error, elapsed time.Duration) {
	if a.history == nil {
		return
	}

	rec := &db.GenerationRecord{
		CorrelationID: uuid.NewString(),
		Provider:      string(provider),
		Prompt:        prompt,
		Resolution:    resolution,
		Seed:          seed,
		DurationMS:    elapsed.Milliseconds(),
	}

	if genErr != nil {
		rec.Status = db.StatusError
		rec.ErrorMessage = genErr.Error()
		if ge, ok := imagegen.AsGenError(genErr); ok {
			rec.ErrorKind = string(ge.Kind)
		}
	} else {
		rec.Status = db.StatusSuccess
		rec.ImageRef = ref
		if w, h, ok := imagegen.ImageDimensions(ref); ok {
			rec.ImageWidth = w
			rec.ImageHeight = h
		}
	}

	if _, err := a.history.InsertGeneration(ctx, rec); err != nil {
		a.logger.Error("failed to record generation", zap.Error(err))
	}
}

// writeGenError maps a classified generation error to an HTTP response.
func (a *API) writeGenError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	kind := ""

	if ge, ok := imagegen.AsGenError(err); ok {
		kind = string(ge.Kind)
		switch ge.Kind {
		case imagegen.KindMissingCredential:
			status = http.StatusBadRequest
		case imagegen.KindAuthRejected:
			status = http.StatusUnauthorized
		case imagegen.KindTimeout:
			status = http.StatusGatewayTimeout
		}
	} else {
		status = http.StatusBadRequest
	}

	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"kind":    kind,
			"message": err.Error(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"message": message},
	})
}
