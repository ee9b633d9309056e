package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces sensitive data in log output.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns detect credential material inside string values.
// Compiled once at package initialization.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),         // OpenAI-style keys
	regexp.MustCompile(`(?i)(AIza[a-zA-Z0-9_-]{35})`),         // Google API keys
	regexp.MustCompile(`(?i)(hf_[a-zA-Z0-9]{30,})`),           // Hugging Face tokens
	regexp.MustCompile(`(?i)(ms-[a-f0-9-]{30,})`),             // ModelScope tokens
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),  // Bearer headers
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`), // password= / password:
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(api_key\s*[:=]\s*[^\s,;]{8,})`),
}

// sensitiveFieldMarkers are substrings of field names that indicate the
// whole value is a secret, regardless of content.
var sensitiveFieldMarkers = []string{
	"api_key",
	"apikey",
	"credential",
	"password",
	"secret",
	"token",
}

// RedactSensitiveData replaces any detected credential material in value.
// Pure function; unmatched values pass through unchanged.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range sensitivePatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// IsSensitiveField reports whether a field name marks its value as secret.
func IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range sensitiveFieldMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
