package orchestrator

import (
	"github.com/felixgeelhaar/daxbuild/internal/exec"
	"github.com/felixgeelhaar/daxbuild/internal/toolchain"
)

// Target is an MSBuild target the orchestrator can invoke
type Target string

// Targets understood by the build driver
const (
	TargetBuild   Target = "Build"
	TargetRebuild Target = "Rebuild"
	TargetRestore Target = "Restore"
)

// parallel reports whether the target is run with -m. Restore is not.
func (t Target) parallel() bool {
	return t != TargetRestore
}

// stepName is the lowercase operation name recorded on the step
func (t Target) stepName() string {
	switch t {
	case TargetRebuild:
		return "rebuild"
	case TargetRestore:
		return "restore"
	default:
		return "build"
	}
}

const consoleLogger = "--logger:console;verbosity=minimal"

// BuildCommand constructs the build-driver invocation for target
func (o *Orchestrator) BuildCommand(target Target) (exec.Step, error) {
	args := []string{
		o.Config.ProjectPath(),
		"-t:" + string(target),
		"-p:Configuration=" + o.Config.Configuration,
		"-v:minimal",
	}
	if target.parallel() {
		args = append(args, "-m")
	}

	msbuild, err := o.tool(toolchain.MSBuild, o.Config.MSBuild, args)
	if err != nil {
		return exec.Step{}, err
	}

	return exec.Step{
		Name:    target.stepName(),
		Path:    msbuild,
		Args:    args,
		Workdir: o.Config.Root,
	}, nil
}

// TestCommand constructs the test-runner invocation. An empty filter selects
// the configured default filter; a supplied one is passed through literally.
func (o *Orchestrator) TestCommand(filter string) (exec.Step, error) {
	if filter == "" {
		filter = o.Config.TestFilter
	}
	args := []string{
		o.Config.TestArtifactPath(),
		"--TestCaseFilter:" + filter,
		consoleLogger,
	}

	vstest, err := o.tool(toolchain.VSTest, o.Config.VSTest, args)
	if err != nil {
		return exec.Step{}, err
	}

	return exec.Step{
		Name:    "test",
		Path:    vstest,
		Args:    args,
		Workdir: o.Config.Root,
	}, nil
}

// LaunchCommand constructs the detached application launch
func (o *Orchestrator) LaunchCommand() exec.Step {
	return exec.Step{
		Name:    "run",
		Path:    o.Config.AppArtifactPath(),
		Workdir: o.Config.Root,
	}
}
