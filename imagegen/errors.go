// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// errors.go defines the classified generation error. Every failure an
// adapter, the poller or the stream awaiter surfaces is a *GenError with a
// kind the UI can act on; the core never substitutes a default image or
// swallows a failure.
package imagegen

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a generation failure.
type ErrorKind string

const (
	// KindMissingCredential: no usable secret for the selected provider.
	// Surfaced before any network call.
	KindMissingCredential ErrorKind = "MISSING_CREDENTIAL"

	// KindAuthRejected: the remote endpoint returned an auth-failure
	// status (401/403 or a provider-specific equivalent).
	KindAuthRejected ErrorKind = "AUTH_REJECTED"

	// KindRequestRejected: another non-success status; the message
	// carries the status code and a truncated response body.
	KindRequestRejected ErrorKind = "REQUEST_REJECTED"

	// KindNetworkBlocked: a fetch-level failure consistent with a CORS
	// block on the one provider known to need a proxy. Carries an
	// actionable remediation hint.
	KindNetworkBlocked ErrorKind = "NETWORK_BLOCKED"

	// KindMalformedResponse: success status but the body lacks the
	// expected result (no image data, no task id).
	KindMalformedResponse ErrorKind = "MALFORMED_RESPONSE"

	// KindRemoteTaskFailed: an asynchronous task reached a terminal
	// failure or cancel status.
	KindRemoteTaskFailed ErrorKind = "REMOTE_TASK_FAILED"

	// KindTimeout: polling/streaming exhausted its fixed attempt budget.
	KindTimeout ErrorKind = "TIMEOUT"
)

// maxBodyDiagnostic bounds how much of a response body is kept in an error
// message for diagnosis.
const maxBodyDiagnostic = 200

// GenError is a classified image generation failure.
type GenError struct {
	Kind       ErrorKind
	Provider   ProviderID
	Message    string
	HTTPStatus int // 0 when the failure never reached an HTTP status
	Err        error
}

func (e *GenError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("imagegen: %s [%s, HTTP %d]: %s", e.Provider, e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("imagegen: %s [%s]: %s", e.Provider, e.Kind, e.Message)
}

func (e *GenError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *GenError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ge *GenError
	return errors.As(err, &ge) && ge.Kind == kind
}

// AsGenError extracts the *GenError from err, if any.
func AsGenError(err error) (*GenError, bool) {
	var ge *GenError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func errMissingCredential(p ProviderID) *GenError {
	return &GenError{
		Kind:     KindMissingCredential,
		Provider: p,
		Message:  "no API key configured for this provider",
	}
}

func errAuthRejected(p ProviderID, status int, body string) *GenError {
	return &GenError{
		Kind:       KindAuthRejected,
		Provider:   p,
		HTTPStatus: status,
		Message:    fmt.Sprintf("authentication rejected: %s", truncateText(body, maxBodyDiagnostic)),
	}
}

func errRequestRejected(p ProviderID, status int, body string) *GenError {
	return &GenError{
		Kind:       KindRequestRejected,
		Provider:   p,
		HTTPStatus: status,
		Message:    fmt.Sprintf("request rejected with status %d: %s", status, truncateText(body, maxBodyDiagnostic)),
	}
}

func errNetworkBlocked(p ProviderID, hint string, cause error) *GenError {
	return &GenError{
		Kind:     KindNetworkBlocked,
		Provider: p,
		Message:  hint,
		Err:      cause,
	}
}

func errMalformedResponse(p ProviderID, msg string) *GenError {
	return &GenError{
		Kind:     KindMalformedResponse,
		Provider: p,
		Message:  msg,
	}
}

func errRemoteTaskFailed(p ProviderID, msg string) *GenError {
	if msg == "" {
		msg = "remote task reported failure without a message"
	}
	return &GenError{
		Kind:     KindRemoteTaskFailed,
		Provider: p,
		Message:  msg,
	}
}

func errTimeout(p ProviderID, msg string) *GenError {
	return &GenError{
		Kind:     KindTimeout,
		Provider: p,
		Message:  msg,
	}
}

// classifyHTTPFailure maps a non-success HTTP status to the auth-rejected or
// request-rejected kind. 401 and 403 are authentication failures everywhere.
func classifyHTTPFailure(p ProviderID, status int, body string) *GenError {
	if status == 401 || status == 403 {
		return errAuthRejected(p, status, body)
	}
	return errRequestRejected(p, status, body)
}
