// Package exectest provides an in-memory exec.Executor for tests.
package exectest

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/daxbuild/internal/exec"
)

// Call is one step observed by a Recorder
type Call struct {
	Step     exec.Step
	Detached bool
}

// Recorder records every step it is asked to execute and answers with
// scripted exit codes. It never starts a real process.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// ExitCodes maps a step name to the exit code Run reports for it
	ExitCodes map[string]int
	// Errors maps a step name to an error returned instead of a result
	Errors map[string]error
	// OnRun, if set, is invoked before Run answers, e.g. to create the
	// artifact a successful build would produce
	OnRun func(step exec.Step)
}

// New returns an empty Recorder
func New() *Recorder {
	return &Recorder{
		ExitCodes: make(map[string]int),
		Errors:    make(map[string]error),
	}
}

// Run records step and returns its scripted outcome
func (r *Recorder) Run(_ context.Context, step exec.Step) (*exec.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Step: step})
	code := r.ExitCodes[step.Name]
	err := r.Errors[step.Name]
	hook := r.OnRun
	r.mu.Unlock()

	if hook != nil {
		hook(step)
	}
	if err != nil {
		return nil, err
	}
	return &exec.Result{ExitCode: code}, nil
}

// Launch records step as a detached launch
func (r *Recorder) Launch(_ context.Context, step exec.Step) (*exec.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Step: step, Detached: true})
	if err := r.Errors[step.Name]; err != nil {
		return nil, err
	}
	return &exec.Process{Pid: 4242, Path: step.Path}, nil
}

// Calls returns a copy of the recorded calls in order
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Names returns the step names in call order
func (r *Recorder) Names() []string {
	calls := r.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Step.Name
	}
	return names
}

// Count returns how many times a step with the given name ran
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Step.Name == name {
			n++
		}
	}
	return n
}
