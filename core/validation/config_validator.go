// Package validation runs the startup checks for the sweater designer
// backend and renders them as a colored progress report.
package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zhlf2008/AI-Sweater-Designer/core"
	"github.com/zhlf2008/AI-Sweater-Designer/styles"
)

// ValidationResult is the outcome of one configuration check.
type ValidationResult struct {
	Valid   bool
	Warning bool
	Message string
	Error   error
}

// ConfigValidator runs offline configuration checks (no network calls).
type ConfigValidator struct {
	envPath string
	cfg     *core.Config
}

// NewConfigValidator creates a validator for the loaded configuration.
func NewConfigValidator(cfg *core.Config) *ConfigValidator {
	return &ConfigValidator{envPath: ".env", cfg: cfg}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile verifies the .env file exists. Missing is a warning, not a
// failure: everything can come from real environment variables.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if _, err := os.Stat(v.envPath); err != nil {
		return ValidationResult{
			Valid:   true,
			Warning: true,
			Message: fmt.Sprintf("%s not found, using process environment only", v.envPath),
		}
	}
	return ValidationResult{Valid: true, Message: v.envPath + " loaded"}
}

// CheckProvider verifies the default provider selection.
func (v *ConfigValidator) CheckProvider() ValidationResult {
	if !v.cfg.Provider.Valid() {
		return ValidationResult{
			Valid: false,
			Error: core.ErrInvalidProvider(string(v.cfg.Provider)),
		}
	}
	return ValidationResult{Valid: true, Message: string(v.cfg.Provider)}
}

// CheckCredentials verifies at least one provider has a key. The app still
// starts without any (users can paste keys in the settings UI), so this is
// a warning.
func (v *ConfigValidator) CheckCredentials() ValidationResult {
	configured := v.cfg.ConfiguredProviders()
	if len(configured) == 0 {
		return ValidationResult{
			Valid:   true,
			Warning: true,
			Message: "no provider keys configured; set them in the settings UI before generating",
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("%d provider(s) configured", len(configured)),
	}
}

// CheckStylesCatalog verifies the styles catalog parses.
func (v *ConfigValidator) CheckStylesCatalog() ValidationResult {
	catalog, err := styles.Load(v.cfg.StylesPath)
	if err != nil {
		path := v.cfg.StylesPath
		if path == "" {
			path = "(embedded)"
		}
		return ValidationResult{
			Valid: false,
			Error: core.ErrStylesUnreadable(path, err.Error()),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("%d categories", len(catalog.Categories)),
	}
}

// CheckDataDir verifies the data directory exists (creating it if needed)
// and is writable.
func (v *ConfigValidator) CheckDataDir() ValidationResult {
	dir := v.cfg.DataDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ValidationResult{Valid: false, Error: core.ErrDataDirUnusable(dir, err.Error())}
	}

	probe := filepath.Join(dir, ".write_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return ValidationResult{Valid: false, Error: core.ErrDataDirUnusable(dir, "not writable: "+err.Error())}
	}
	_ = os.Remove(probe)

	return ValidationResult{Valid: true, Message: dir}
}
