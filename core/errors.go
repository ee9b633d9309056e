package core

import "fmt"

// ConfigError is a configuration error with an actionable instruction.
type ConfigError struct {
	Code    string // stable code for programmatic handling
	Message string
	Action  string // how to fix it
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors.
const (
	ErrCodeEnvFileMissing   = "ENV_FILE_MISSING"
	ErrCodeInvalidProvider  = "INVALID_PROVIDER"
	ErrCodeInvalidPort      = "INVALID_PORT"
	ErrCodeInvalidProxyURL  = "INVALID_PROXY_URL"
	ErrCodeNoCredentials    = "NO_CREDENTIALS"
	ErrCodeDataDirUnusable  = "DATA_DIR_UNUSABLE"
	ErrCodeStylesUnreadable = "STYLES_UNREADABLE"
	ErrCodeMissingConfig    = "MISSING_CONFIG"
)

// ErrEnvFileMissing returns an error for a missing .env file.
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy .env.example to .env and configure your provider keys",
	}
}

// ErrInvalidProvider returns an error for an unknown provider name.
func ErrInvalidProvider(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidProvider,
		Message: fmt.Sprintf("Unknown image provider %q", name),
		Action:  "Set IMAGE_PROVIDER to one of: gemini, zimage, modelscope, dashscope, openai",
	}
}

// ErrInvalidPort returns an error for an out-of-range port.
func ErrInvalidPort(port int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPort,
		Message: fmt.Sprintf("Invalid PORT value %d", port),
		Action:  "Set PORT to a value between 1 and 65535",
	}
}

// ErrInvalidProxyURL returns an error for a malformed proxy prefix.
func ErrInvalidProxyURL(proxy string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidProxyURL,
		Message: fmt.Sprintf("Invalid CORS_PROXY_URL %q", proxy),
		Action:  "Set CORS_PROXY_URL to a full URL prefix (e.g. https://proxy.example/?)",
	}
}

// ErrNoCredentials returns an error when no provider key is configured.
func ErrNoCredentials() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeNoCredentials,
		Message: "No image provider credentials configured",
		Action:  "Set at least one of GEMINI_API_KEY, HF_TOKEN, MODELSCOPE_API_KEY, DASHSCOPE_API_KEY or OPENAI_API_KEY",
	}
}

// ErrDataDirUnusable returns an error when the data directory cannot be used.
func ErrDataDirUnusable(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDataDirUnusable,
		Message: fmt.Sprintf("Data directory %s is unusable: %s", path, reason),
		Action:  "Set DATA_DIR to a writable directory",
	}
}

// ErrStylesUnreadable returns an error when the styles catalog cannot load.
func ErrStylesUnreadable(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeStylesUnreadable,
		Message: fmt.Sprintf("Styles catalog %s could not be loaded: %s", path, reason),
		Action:  "Fix the YAML file or unset STYLES_PATH to use the built-in catalog",
	}
}

// ErrMissingConfig returns an error for a missing required variable.
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// IsConfigError checks whether err is a ConfigError.
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the code from a ConfigError, or "" otherwise.
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
