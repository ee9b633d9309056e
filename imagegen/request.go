// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// request.go defines the normalized generation request constructed fresh for
// every call. It is never persisted.
package imagegen

// Default tunables applied when the configuration leaves them unset.
const (
	// DefaultSteps is the default number of iteration steps for
	// providers that accept one.
	DefaultSteps = 30

	// DefaultTimeShift is the default schedule shift for the
	// space-hosted generator.
	DefaultTimeShift = 3.0
)

// GenerationRequest is the normalized input every adapter translates into
// its provider's wire protocol.
type GenerationRequest struct {
	// Prompt is the assembled free-text prompt. Opaque to the core.
	Prompt string

	// Resolution is a WIDTHxHEIGHT descriptor drawn from the supported
	// set (see atoms.go). Unrecognized values fall back to the square
	// default wherever a lookup table is consulted.
	Resolution string

	// Seed for reproducible generation.
	Seed int64

	// Steps is the iteration-steps tunable.
	Steps int

	// TimeShift is the schedule/time-shift tunable.
	TimeShift float64
}

// NewGenerationRequest builds a request, filling unset tunables from the
// call settings and falling back to package defaults.
func NewGenerationRequest(prompt, resolution string, seed int64, s Settings) *GenerationRequest {
	steps := s.Steps
	if steps <= 0 {
		steps = DefaultSteps
	}
	shift := s.TimeShift
	if shift <= 0 {
		shift = DefaultTimeShift
	}
	return &GenerationRequest{
		Prompt:     prompt,
		Resolution: resolution,
		Seed:       seed,
		Steps:      steps,
		TimeShift:  shift,
	}
}
