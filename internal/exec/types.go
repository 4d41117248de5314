package exec

import (
	"fmt"
	"strings"
	"time"
)

// Step is one external tool invocation: the executable, its arguments and the
// directory it runs in. Steps are built once and executed once.
type Step struct {
	Name    string   // Operation the step belongs to, e.g. "build" or "test"
	Path    string   // Executable path
	Args    []string // Arguments, in order
	Workdir string   // Working directory
}

// Argv returns the executable followed by its arguments
func (s Step) Argv() []string {
	argv := make([]string, 0, len(s.Args)+1)
	argv = append(argv, s.Path)
	return append(argv, s.Args...)
}

// String renders the literal command line, quoting tokens that contain spaces
// so it can be pasted back into a shell.
func (s Step) String() string {
	argv := s.Argv()
	quoted := make([]string, len(argv))
	for i, tok := range argv {
		if tok == "" || strings.ContainsAny(tok, " \t") {
			quoted[i] = `"` + tok + `"`
			continue
		}
		quoted[i] = tok
	}
	return strings.Join(quoted, " ")
}

// Validate checks that the step can be handed to the operating system
func (s Step) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("step %q has no executable", s.Name)
	}
	if s.Workdir == "" {
		return fmt.Errorf("step %q has no working directory", s.Name)
	}
	return nil
}

// Result represents the outcome of a step that ran to completion
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Success reports whether the step exited with code 0
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Process describes a detached process that was started and not waited for
type Process struct {
	Pid  int
	Path string
}

// RunManifest is the audit record written for each executed step
type RunManifest struct {
	Timestamp    time.Time         `json:"timestamp"`
	InvocationID string            `json:"invocation_id"`
	Step         string            `json:"step"`
	Command      []string          `json:"command"`
	Workdir      string            `json:"workdir"`
	Detached     bool              `json:"detached,omitempty"`
	ExitCode     int               `json:"exit_code"`
	Duration     string            `json:"duration"`
	Artifacts    map[string]string `json:"artifacts,omitempty"`
}
