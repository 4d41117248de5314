package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Usage errors (USAGE-001 to USAGE-099)
	ErrCodeUsageMissingAction ErrorCode = "USAGE-001"
	ErrCodeUsageUnknownAction ErrorCode = "USAGE-002"

	// Tool errors (TOOL-001 to TOOL-099)
	ErrCodeToolNotFound    ErrorCode = "TOOL-001"
	ErrCodeToolFailed      ErrorCode = "TOOL-002"
	ErrCodeToolStartFailed ErrorCode = "TOOL-003"

	// Artifact errors (ARTIFACT-001 to ARTIFACT-099)
	ErrCodeArtifactBuildFailed ErrorCode = "ARTIFACT-001"
	ErrCodeArtifactMissing     ErrorCode = "ARTIFACT-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-001"
	ErrCodeConfigUnmarshal ErrorCode = "CONFIG-002"
)

// DaxbuildError represents an enhanced error with code, suggestions, documentation
// and, for failures of external tools, the exit code the process should report.
type DaxbuildError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error

	// ExitCode is the process exit code to report. Zero means "not set",
	// in which case the caller falls back to a general failure.
	ExitCode int
}

// Error implements the error interface
func (e *DaxbuildError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *DaxbuildError) Unwrap() error {
	return e.Cause
}

// New creates a new DaxbuildError
func New(code ErrorCode, message string) *DaxbuildError {
	return &DaxbuildError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new DaxbuildError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *DaxbuildError {
	return &DaxbuildError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *DaxbuildError) WithSuggestion(suggestion string) *DaxbuildError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *DaxbuildError) WithSuggestions(suggestions ...string) *DaxbuildError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *DaxbuildError) WithDocs(url string) *DaxbuildError {
	e.DocsURL = url
	return e
}

// WithExitCode sets the process exit code carried by the error
func (e *DaxbuildError) WithExitCode(code int) *DaxbuildError {
	e.ExitCode = code
	return e
}

// HasCode reports whether err, or any error it wraps, is a DaxbuildError with the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var de *DaxbuildError
		if !stderrors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Cause
	}
	return false
}

// Common error constructors for frequently used errors

// NewMissingActionError creates an error for an invocation without an action
func NewMissingActionError() *DaxbuildError {
	return New(ErrCodeUsageMissingAction, "no command given").
		WithExitCode(1)
}

// NewUnknownActionError creates an error for an unrecognized action
func NewUnknownActionError(action string) *DaxbuildError {
	return New(ErrCodeUsageUnknownAction, fmt.Sprintf("unknown command: %s", action)).
		WithSuggestion("Use one of: build, rebuild, restore, test, run").
		WithExitCode(1)
}

// NewToolNotFoundError creates an error for a tool that could not be located
func NewToolNotFoundError(tool string, searched []string) *DaxbuildError {
	err := New(ErrCodeToolNotFound, fmt.Sprintf("%s not found (searched: %s)", tool, strings.Join(searched, ", ")))
	return err.
		WithSuggestion(fmt.Sprintf("Install %s or set its path in daxbuild.yaml", tool)).
		WithSuggestion("Override the location with an environment variable, e.g. DAXBUILD_MSBUILD or DAXBUILD_VSTEST")
}

// NewToolFailedError creates an error for a tool that exited with a nonzero code
func NewToolFailedError(command string, exitCode int) *DaxbuildError {
	return New(ErrCodeToolFailed, fmt.Sprintf("command exited with code %d: %s", exitCode, command)).
		WithExitCode(exitCode)
}

// NewToolStartError creates an error for a tool that could not be started
func NewToolStartError(command string, cause error) *DaxbuildError {
	return Wrap(ErrCodeToolStartFailed, fmt.Sprintf("failed to start: %s", command), cause).
		WithSuggestion("Check that the executable exists and is runnable")
}

// NewPrerequisiteBuildError creates an error for a failed implicit build
func NewPrerequisiteBuildError(artifact string, cause error) *DaxbuildError {
	err := Wrap(ErrCodeArtifactBuildFailed, fmt.Sprintf("prerequisite build for %s failed", artifact), cause)
	var de *DaxbuildError
	if stderrors.As(cause, &de) && de.ExitCode != 0 {
		err.ExitCode = de.ExitCode
	}
	return err
}

// NewArtifactMissingError creates an error for an artifact that is absent after a successful build
func NewArtifactMissingError(path string) *DaxbuildError {
	return New(ErrCodeArtifactMissing, fmt.Sprintf("build succeeded but produced no artifact at %s", path)).
		WithSuggestion("Check the output path of the project; it may build somewhere unexpected").
		WithSuggestion("Override the artifact location with test_artifact/app_artifact in daxbuild.yaml")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *DaxbuildError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Check daxbuild.yaml and DAXBUILD_* environment variables")
}

// NewConfigUnmarshalError creates a configuration parse error
func NewConfigUnmarshalError(path string, cause error) *DaxbuildError {
	return Wrap(ErrCodeConfigUnmarshal, fmt.Sprintf("failed to parse configuration file: %s", path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion("Ensure the file is valid YAML")
}
