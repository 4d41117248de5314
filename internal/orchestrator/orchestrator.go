package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/daxbuild/internal/config"
	"github.com/felixgeelhaar/daxbuild/internal/errors"
	"github.com/felixgeelhaar/daxbuild/internal/exec"
	"github.com/felixgeelhaar/daxbuild/internal/log"
	"github.com/felixgeelhaar/daxbuild/internal/toolchain"
	"github.com/felixgeelhaar/daxbuild/internal/ux"
)

// ToolResolver locates an external tool, honouring an explicitly configured path
type ToolResolver interface {
	Resolve(tool toolchain.Tool, configured string) (string, error)
}

// Orchestrator runs the named operations against one repository
type Orchestrator struct {
	Config   *config.Config
	Executor exec.Executor
	Tools    ToolResolver
	Printer  *ux.Printer
	Logger   *log.Logger

	// Exists checks artifact presence; nil means config.ArtifactExists
	Exists func(path string) bool

	resolved map[string]string
}

// New creates an Orchestrator with the local resolver, a plain stdout printer
// and the default logger. Fields may be replaced before first use.
func New(cfg *config.Config, executor exec.Executor) *Orchestrator {
	return &Orchestrator{
		Config:   cfg,
		Executor: executor,
		Tools:    toolchain.NewResolver(),
		Printer:  ux.NewPrinter(os.Stdout, false),
		Logger:   log.DefaultLogger(),
	}
}

// Build compiles the project
func (o *Orchestrator) Build(ctx context.Context) error {
	return o.msbuild(ctx, TargetBuild)
}

// Rebuild cleans and compiles the project
func (o *Orchestrator) Rebuild(ctx context.Context) error {
	return o.msbuild(ctx, TargetRebuild)
}

// Restore restores the project's packages
func (o *Orchestrator) Restore(ctx context.Context) error {
	return o.msbuild(ctx, TargetRestore)
}

// Test runs the test assembly, building it first if it is missing.
//
// A nonzero exit from the test runner is a test result, not a tooling
// failure: it is reported and returned in the Result with a nil error,
// unless StrictTests is set.
func (o *Orchestrator) Test(ctx context.Context, filter string) (*exec.Result, error) {
	artifact := o.Config.TestArtifactPath()
	if err := o.ensureArtifact(ctx, artifact); err != nil {
		return nil, err
	}

	step, err := o.TestCommand(filter)
	if err != nil {
		return nil, err
	}

	result, err := o.run(ctx, step)
	if err != nil {
		return nil, err
	}

	if result.ExitCode != 0 {
		o.Printer.Warn("Tests finished with exit code %d", result.ExitCode)
		if o.Config.StrictTests {
			return result, errors.NewToolFailedError(step.String(), result.ExitCode)
		}
		return result, nil
	}

	o.Printer.Success("Tests passed")
	return result, nil
}

// Run launches the application without waiting for it, building it first if
// it is missing.
func (o *Orchestrator) Run(ctx context.Context) (*exec.Process, error) {
	app := o.Config.AppArtifactPath()
	if err := o.ensureArtifact(ctx, app); err != nil {
		return nil, err
	}

	step := o.LaunchCommand()
	o.Printer.Command(step.String())
	proc, err := o.Executor.Launch(ctx, step)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.NewToolStartError(step.String(), err)
	}

	o.logger().Info("application launched", "path", step.Path, "pid", proc.Pid)
	o.Printer.Success("Launched: %s", step.Path)
	return proc, nil
}

func (o *Orchestrator) msbuild(ctx context.Context, target Target) error {
	step, err := o.BuildCommand(target)
	if err != nil {
		return err
	}
	_, err = o.checked(ctx, step)
	return err
}

// ensureArtifact runs a prerequisite build when path is absent and verifies
// the build actually produced it.
func (o *Orchestrator) ensureArtifact(ctx context.Context, path string) error {
	if o.exists(path) {
		o.logger().Debug("artifact present, skipping build", "artifact", path)
		return nil
	}

	o.Printer.Info("%s not found, building first...", filepath.Base(path))
	if err := o.Build(ctx); err != nil {
		if isCancellation(ctx, err) {
			return err
		}
		return errors.NewPrerequisiteBuildError(path, err)
	}

	// A dry run never produces anything to check for.
	if o.Config.DryRun {
		return nil
	}
	if !o.exists(path) {
		return errors.NewArtifactMissingError(path)
	}
	return nil
}

// checked runs step and turns a nonzero exit into an error carrying its code
func (o *Orchestrator) checked(ctx context.Context, step exec.Step) (*exec.Result, error) {
	result, err := o.run(ctx, step)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return result, errors.NewToolFailedError(step.String(), result.ExitCode)
	}
	return result, nil
}

// run announces and executes step; only a failure to run at all is an error
func (o *Orchestrator) run(ctx context.Context, step exec.Step) (*exec.Result, error) {
	o.Printer.Command(step.String())

	result, err := o.Executor.Run(ctx, step)
	if err != nil {
		if isCancellation(ctx, err) {
			return nil, err
		}
		return nil, errors.NewToolStartError(step.String(), err)
	}

	o.logger().Debug("step finished",
		"step", step.Name,
		"exit_code", result.ExitCode,
		"duration", result.Duration)
	return result, nil
}

// tool resolves an executable once per Orchestrator. args are the arguments
// it is about to be called with, named in the error when it cannot be found.
func (o *Orchestrator) tool(t toolchain.Tool, configured string, args []string) (string, error) {
	if path, ok := o.resolved[t.Name]; ok {
		return path, nil
	}

	path, err := o.Tools.Resolve(t, configured)
	if err != nil {
		if !o.Config.DryRun {
			attempted := exec.Step{Path: t.Executables[0], Args: args}
			return "", fmt.Errorf("%s: %w", attempted.String(), err)
		}
		path = configured
		if path == "" {
			path = t.Executables[0]
		}
		o.logger().WithError(err).Warn("tool not found, showing placeholder in dry run", "tool", t.Name)
	}

	if o.resolved == nil {
		o.resolved = make(map[string]string)
	}
	o.resolved[t.Name] = path
	o.logger().Debug("tool resolved", "tool", t.Name, "path", path)
	return path, nil
}

func (o *Orchestrator) exists(path string) bool {
	if o.Exists != nil {
		return o.Exists(path)
	}
	return config.ArtifactExists(path)
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger == nil {
		return log.DefaultLogger()
	}
	return o.Logger
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded))
}
