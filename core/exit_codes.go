package core

// Exit codes for the application. Signal-based exits follow the Unix
// convention of 128 + signal number.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1

	// 128 + 2 (SIGINT)
	ExitCodeSIGINT = 130

	// 128 + 15 (SIGTERM)
	ExitCodeSIGTERM = 143
)

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return "unknown"
	}
}

// IsSignalExit reports whether the exit code indicates signal termination.
func IsSignalExit(code int) bool {
	return code == ExitCodeSIGINT || code == ExitCodeSIGTERM
}
