package validation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/zhlf2008/AI-Sweater-Designer/core"
)

// ValidationStep is a single validation step with its outcome.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// StepStatus is the outcome of one validation step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
	StepWarning
	StepSkipped
)

func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SuiteResult is the complete result of one suite run.
type SuiteResult struct {
	Steps       []ValidationStep
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Warnings    int
	Duration    time.Duration
	Success     bool
}

// ValidationSuite runs all startup checks in sequence with progress output.
type ValidationSuite struct {
	output       io.Writer
	validator    *ConfigValidator
	showProgress bool
	failFast     bool
}

// NewValidationSuite creates a suite for the loaded configuration.
func NewValidationSuite(cfg *core.Config) *ValidationSuite {
	return &ValidationSuite{
		output:       os.Stdout,
		validator:    NewConfigValidator(cfg),
		showProgress: true,
	}
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithFailFast stops validation on the first failure.
func (s *ValidationSuite) WithFailFast(failFast bool) *ValidationSuite {
	s.failFast = failFast
	return s
}

// WithEnvPath sets a custom path for the .env file check.
func (s *ValidationSuite) WithEnvPath(path string) *ValidationSuite {
	s.validator.WithEnvPath(path)
	return s
}

// Validate runs all checks in sequence. All checks are offline; provider
// credentials are verified on demand through the settings UI, not at
// startup.
func (s *ValidationSuite) Validate() SuiteResult {
	startTime := time.Now()

	if s.showProgress {
		s.printHeader("AI Sweater Designer Startup Validation")
	}

	checks := []struct {
		name string
		fn   func() ValidationResult
	}{
		{"Environment File", s.validator.CheckEnvFile},
		{"Image Provider", s.validator.CheckProvider},
		{"Provider Credentials", s.validator.CheckCredentials},
		{"Styles Catalog", s.validator.CheckStylesCatalog},
		{"Data Directory", s.validator.CheckDataDir},
	}

	steps := make([]ValidationStep, 0, len(checks))
	for _, check := range checks {
		step := s.runStep(check.name, check.fn)
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			break
		}
	}

	result := s.buildResult(steps, startTime)
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

// runStep executes one check with timing and progress output.
func (s *ValidationSuite) runStep(name string, fn func() ValidationResult) ValidationStep {
	step := ValidationStep{Name: name, Status: StepRunning}

	if s.showProgress {
		fmt.Fprintf(s.output, "  ◌ %s...", name)
	}

	startTime := time.Now()
	result := fn()
	step.Latency = time.Since(startTime)
	step.Message = result.Message
	step.Error = result.Error

	switch {
	case !result.Valid:
		step.Status = StepFailed
	case result.Warning:
		step.Status = StepWarning
	default:
		step.Status = StepPassed
	}

	if s.showProgress {
		s.printStep(step)
	}
	return step
}

// buildResult aggregates completed steps.
func (s *ValidationSuite) buildResult(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}
	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepWarning:
			result.PassedSteps++
			result.Warnings++
		case StepFailed:
			result.FailedSteps++
			result.Success = false
		}
	}
	return result
}

func (s *ValidationSuite) printHeader(title string) {
	fmt.Fprintln(s.output)
	color.New(color.FgCyan, color.Bold).Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

func (s *ValidationSuite) printStep(step ValidationStep) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	case StepSkipped:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	default:
		icon = "?"
		clr = color.New(color.FgWhite)
	}

	fmt.Fprintf(s.output, "\r")
	clr.Fprintf(s.output, "  %s %s", icon, step.Name)
	if step.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.output, " - %s", step.Message)
	}
	fmt.Fprintln(s.output)

	if step.Status == StepFailed && step.Error != nil {
		color.New(color.FgRed).Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)
	if result.Success {
		color.New(color.FgGreen, color.Bold).Fprintf(s.output, "━━━ Validation Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d checks passed in %v)",
			result.PassedSteps, result.TotalSteps, result.Duration.Round(time.Millisecond))
		color.New(color.FgGreen, color.Bold).Fprintln(s.output, " ━━━")
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(s.output, "━━━ Validation Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.PassedSteps, result.FailedSteps)
		color.New(color.FgRed, color.Bold).Fprintln(s.output, " ━━━")
	}
	fmt.Fprintln(s.output)
}

// GetFirstError returns the first error from failed steps, or nil.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Status == StepFailed && step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a one-line human-readable summary.
func (r SuiteResult) Summary() string {
	var sb strings.Builder
	if r.Success {
		sb.WriteString("Validation Passed: ")
	} else {
		sb.WriteString("Validation Failed: ")
	}
	sb.WriteString(fmt.Sprintf("%d/%d checks passed", r.PassedSteps, r.TotalSteps))
	if r.FailedSteps > 0 {
		sb.WriteString(fmt.Sprintf(", %d failed", r.FailedSteps))
	}
	if r.Warnings > 0 {
		sb.WriteString(fmt.Sprintf(", %d warnings", r.Warnings))
	}
	sb.WriteString(fmt.Sprintf(" (took %v)", r.Duration.Round(time.Millisecond)))
	return sb.String()
}
