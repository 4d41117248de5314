package exec

import (
	"context"
	"fmt"
	"io"
)

// DryRunner prints each step instead of executing it and reports success.
type DryRunner struct {
	Out io.Writer
}

// Run prints the command line of step
func (d *DryRunner) Run(_ context.Context, step Step) (*Result, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}
	fmt.Fprintf(d.Out, "+ %s\n", step)
	return &Result{}, nil
}

// Launch prints the command line of step, marked as detached
func (d *DryRunner) Launch(_ context.Context, step Step) (*Process, error) {
	if err := step.Validate(); err != nil {
		return nil, err
	}
	fmt.Fprintf(d.Out, "+ %s &\n", step)
	return &Process{Path: step.Path}, nil
}
