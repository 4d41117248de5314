package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/daxbuild/internal/errors"
	"github.com/felixgeelhaar/daxbuild/internal/exec"
	"github.com/felixgeelhaar/daxbuild/internal/exec/exectest"
	"github.com/felixgeelhaar/daxbuild/internal/toolchain"
)

type staticResolver map[string]string

func (s staticResolver) Resolve(tool toolchain.Tool, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if p, ok := s[tool.Name]; ok {
		return p, nil
	}
	return "", errors.NewToolNotFoundError(tool.Name, nil)
}

type harness struct {
	root   string
	env    map[string]string
	rec    *exectest.Recorder
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	opts   Options
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		root:   t.TempDir(),
		env:    map[string]string{},
		rec:    exectest.New(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.opts = Options{
		Stdin:  strings.NewReader(""),
		Stdout: h.stdout,
		Stderr: h.stderr,
		LookupEnv: func(key string) (string, bool) {
			v, ok := h.env[key]
			return v, ok
		},
		Executor: h.rec,
		Tools: staticResolver{
			toolchain.MSBuild.Name: "/tools/MSBuild.exe",
			toolchain.VSTest.Name:  "/tools/vstest.console.exe",
		},
	}
	return h
}

// dispatch runs args against the harness root
func (h *harness) dispatch(args ...string) int {
	return Dispatch(context.Background(), append([]string{"--root", h.root}, args...), h.opts)
}

func (h *harness) path(rel string) string {
	return filepath.Join(h.root, filepath.FromSlash(rel))
}

func (h *harness) touch(t *testing.T, rel string) {
	t.Helper()
	p := h.path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte("bin"), 0644))
}

const (
	testDLL = "src/bin/Debug/DaxStudio.Tests.dll"
	appEXE  = "src/bin/Debug/DaxStudio.exe"
)

func TestNoActionPrintsUsage(t *testing.T) {
	h := newHarness(t)

	code := Dispatch(context.Background(), nil, h.opts)

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stdout.String(), "Usage:")
	assert.Empty(t, h.rec.Calls())
	assert.Empty(t, h.stderr.String())
}

func TestNoActionWithFlagsPrintsUsage(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.dispatch())
	assert.Contains(t, h.stdout.String(), "Usage:")
	assert.Empty(t, h.rec.Calls())
}

func TestUnknownAction(t *testing.T) {
	tests := []string{"foo", "help", "completion", "version", "tests", "no-help", "NO-HELP"}

	for _, action := range tests {
		t.Run(action, func(t *testing.T) {
			h := newHarness(t)

			code := h.dispatch(action)

			assert.Equal(t, 1, code)
			out := h.stdout.String()
			assert.Contains(t, out, "Unknown command: "+action)
			assert.Contains(t, out, "Usage:")
			assert.Less(t, strings.Index(out, "Unknown command"), strings.Index(out, "Usage:"))
			assert.Empty(t, h.rec.Calls())
		})
	}
}

func TestActionsAreCaseInsensitive(t *testing.T) {
	for _, action := range []string{"BUILD", "Build", "build"} {
		t.Run(action, func(t *testing.T) {
			h := newHarness(t)

			assert.Equal(t, 0, h.dispatch(action))
			require.Len(t, h.rec.Calls(), 1)
			step := h.rec.Calls()[0].Step
			assert.Equal(t, "build", step.Name)
			assert.Contains(t, step.Args, "-t:Build")
		})
	}
}

func TestMSBuildActions(t *testing.T) {
	tests := []struct {
		action string
		target string
	}{
		{"build", "-t:Build"},
		{"Rebuild", "-t:Rebuild"},
		{"RESTORE", "-t:Restore"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			h := newHarness(t)

			assert.Equal(t, 0, h.dispatch(tt.action))
			calls := h.rec.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "/tools/MSBuild.exe", calls[0].Step.Path)
			assert.Contains(t, calls[0].Step.Args, tt.target)
			assert.Equal(t, h.root, calls[0].Step.Workdir)
			assert.Contains(t, h.stdout.String(), ">>> /tools/MSBuild.exe")
		})
	}
}

func TestExtraArgumentsAreIgnored(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 0, h.dispatch("build", "extra", "args"))
	step := h.rec.Calls()[0].Step
	assert.NotContains(t, step.Args, "extra")
}

func TestRebuildFailureExitCode(t *testing.T) {
	h := newHarness(t)
	h.rec.ExitCodes["rebuild"] = 2

	assert.Equal(t, 2, h.dispatch("rebuild"))
	assert.Equal(t, []string{"rebuild"}, h.rec.Names())
	assert.Contains(t, h.stderr.String(), "Error:")
	assert.Contains(t, h.stderr.String(), "-t:Rebuild")
}

func TestTestBuildsMissingArtifact(t *testing.T) {
	h := newHarness(t)
	h.rec.OnRun = func(step exec.Step) {
		if step.Name == "build" {
			h.touch(t, testDLL)
		}
	}
	h.rec.ExitCodes["test"] = 3

	code := h.dispatch("test")

	assert.Equal(t, 0, code, "failing tests are reported, not propagated")
	assert.Equal(t, []string{"build", "test"}, h.rec.Names())
	assert.Contains(t, h.stdout.String(), "Tests finished with exit code 3")
}

func TestTestStrict(t *testing.T) {
	h := newHarness(t)
	h.touch(t, testDLL)
	h.rec.ExitCodes["test"] = 3

	assert.Equal(t, 3, h.dispatch("test", "--strict"))
	assert.Equal(t, []string{"test"}, h.rec.Names())
}

func TestTestStrictFromEnvironment(t *testing.T) {
	h := newHarness(t)
	h.touch(t, testDLL)
	h.env["DAXBUILD_STRICT_TESTS"] = "true"
	h.rec.ExitCodes["test"] = 3

	assert.Equal(t, 3, h.dispatch("test"))
}

func TestTestStrictFlagOverridesEnvironment(t *testing.T) {
	h := newHarness(t)
	h.touch(t, testDLL)
	h.env["DAXBUILD_STRICT_TESTS"] = "true"
	h.rec.ExitCodes["test"] = 3

	assert.Equal(t, 0, h.dispatch("test", "--strict=false"))
}

func TestTestFilter(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", []string{"test"}, "--TestCaseFilter:FullyQualifiedName~VisualQueryPlan"},
		{"explicit", []string{"test", "TestCategory=Unit"}, "--TestCaseFilter:TestCategory=Unit"},
		{"extra ignored", []string{"TEST", "Name~Foo", "more"}, "--TestCaseFilter:Name~Foo"},
		{"leading dash after --", []string{"test", "--", "-TestCategory=Slow"}, "--TestCaseFilter:-TestCategory=Slow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.touch(t, testDLL)

			assert.Equal(t, 0, h.dispatch(tt.args...))
			calls := h.rec.Calls()
			require.Len(t, calls, 1)
			assert.Contains(t, calls[0].Step.Args, tt.want)
		})
	}
}

func TestPrerequisiteBuildFailureStops(t *testing.T) {
	for _, action := range []string{"test", "run"} {
		t.Run(action, func(t *testing.T) {
			h := newHarness(t)
			h.rec.ExitCodes["build"] = 5

			assert.Equal(t, 5, h.dispatch(action))
			assert.Equal(t, []string{"build"}, h.rec.Names())
		})
	}
}

func TestRunLaunchesDetached(t *testing.T) {
	h := newHarness(t)
	h.touch(t, appEXE)

	assert.Equal(t, 0, h.dispatch("run"))
	calls := h.rec.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Detached)
	assert.Equal(t, h.path(appEXE), calls[0].Step.Path)
}

func TestToolNotFound(t *testing.T) {
	h := newHarness(t)
	h.opts.Tools = staticResolver{}

	assert.Equal(t, 1, h.dispatch("build"))
	assert.Contains(t, h.stderr.String(), "TOOL-001")
	assert.Contains(t, h.stderr.String(), "-t:Build")
	assert.Empty(t, h.rec.Calls())
}

func TestConfigurationFromEnvironment(t *testing.T) {
	h := newHarness(t)
	h.env["DAXBUILD_CONFIGURATION"] = "Release"
	h.env["DAXBUILD_MSBUILD"] = "/opt/msbuild"

	assert.Equal(t, 0, h.dispatch("build"))
	step := h.rec.Calls()[0].Step
	assert.Equal(t, "/opt/msbuild", step.Path)
	assert.Contains(t, step.Args, "-p:Configuration=Release")
}

func TestConfigurationFile(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("configuration: Release\n"), 0644))

	assert.Equal(t, 0, h.dispatch("--config", cfgPath, "build"))
	assert.Contains(t, h.rec.Calls()[0].Step.Args, "-p:Configuration=Release")
}

func TestMissingConfigFile(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.dispatch("--config", h.path("nope.yaml"), "build"))
	assert.Contains(t, h.stderr.String(), "CONFIG-002")
	assert.Empty(t, h.rec.Calls())
}

func TestDryRunPrintsCommands(t *testing.T) {
	h := newHarness(t)
	h.opts.Executor = nil

	assert.Equal(t, 0, h.dispatch("--dry-run", "test"))
	out := h.stdout.String()
	assert.Contains(t, out, "+ /tools/MSBuild.exe")
	assert.Contains(t, out, "+ /tools/vstest.console.exe")
	assert.NoFileExists(t, h.path(testDLL))
}

func TestManifestDir(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 0, h.dispatch("--manifest-dir", "runs", "build"))

	entries, err := os.ReadDir(h.path("runs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_build.json"))
}

func TestVersionFlag(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 0, Dispatch(context.Background(), []string{"--version"}, h.opts))
	assert.Contains(t, h.stdout.String(), "daxbuild")
	assert.Empty(t, h.rec.Calls())
}

func TestUnknownFlag(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.dispatch("build", "--bogus"))
	assert.Contains(t, h.stderr.String(), "unknown flag")
	assert.Empty(t, h.rec.Calls())
}

func TestCancelledContext(t *testing.T) {
	h := newHarness(t)
	h.rec.Errors["build"] = context.Canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := Dispatch(ctx, []string{"--root", h.root, "build"}, h.opts)

	assert.Equal(t, 130, code)
	assert.Contains(t, h.stderr.String(), "cancelled")
}
