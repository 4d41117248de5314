package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"time"
)

// Runner executes a step and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, step Step) (*Result, error)
}

// Launcher starts a step detached and returns without waiting for it.
type Launcher interface {
	Launch(ctx context.Context, step Step) (*Process, error)
}

// Executor is the full process surface the orchestrator needs.
type Executor interface {
	Runner
	Launcher
}

// LocalRunner runs steps as child processes of the current process.
// Child output is streamed to Stdout/Stderr as it is produced; nothing is captured.
type LocalRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLocalRunner returns a runner wired to the given streams. A nil stream
// is replaced by the process's own.
func NewLocalRunner(stdin io.Reader, stdout, stderr io.Writer) *LocalRunner {
	r := &LocalRunner{Stdin: stdin, Stdout: stdout, Stderr: stderr}
	if r.Stdin == nil {
		r.Stdin = os.Stdin
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
	return r
}

// Run executes step and waits for it. A nonzero exit is reported through
// Result.ExitCode with a nil error; an error means the process could not be
// started or was cancelled.
func (r *LocalRunner) Run(ctx context.Context, step Step) (*Result, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}

	cmd := osexec.CommandContext(ctx, step.Path, step.Args...)
	cmd.Dir = step.Workdir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	start := time.Now()
	err := cmd.Run()
	result := &Result{Duration: time.Since(start)}
	if err == nil {
		return result, nil
	}

	var exitErr *osexec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w", step.Name, ctxErr)
	}

	result.ExitCode = exitErr.ExitCode()
	if result.ExitCode < 0 {
		// Terminated by a signal; there is no code to forward.
		result.ExitCode = 1
	}
	return result, nil
}

// Launch starts step in its own process group with no standard streams and
// releases it immediately. The process is not tied to ctx and outlives the caller.
func (r *LocalRunner) Launch(ctx context.Context, step Step) (*Process, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := osexec.Command(step.Path, step.Args...)
	cmd.Dir = step.Workdir
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	proc := &Process{Pid: cmd.Process.Pid, Path: step.Path}
	if err := cmd.Process.Release(); err != nil {
		return proc, fmt.Errorf("release launched process: %w", err)
	}
	return proc, nil
}
