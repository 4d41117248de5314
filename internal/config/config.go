package config

import (
	"os"
	"path/filepath"
)

// DefaultFileName is the configuration file looked up in the repository root
const DefaultFileName = "daxbuild.yaml"

// Config holds everything the orchestrator needs to know about the repository
// and the tools it drives. Relative paths are relative to Root.
type Config struct {
	// Root is the repository root; every tool runs with it as working directory
	Root string `yaml:"root,omitempty"`

	// MSBuild and VSTest override tool discovery when set
	MSBuild string `yaml:"msbuild,omitempty"`
	VSTest  string `yaml:"vstest,omitempty"`

	// Project is the project file handed to the build driver
	Project string `yaml:"project"`
	// TestArtifact is the compiled test assembly handed to the test runner
	TestArtifact string `yaml:"test_artifact"`
	// AppArtifact is the application executable launched by "run"
	AppArtifact string `yaml:"app_artifact"`

	// Configuration is the build configuration, e.g. Debug or Release
	Configuration string `yaml:"configuration"`
	// TestFilter is the filter used when "test" is given none
	TestFilter string `yaml:"test_filter"`
	// StrictTests makes a failing test run fail the command
	StrictTests bool `yaml:"strict_tests"`

	// ManifestDir enables run manifests when non-empty
	ManifestDir string `yaml:"manifest_dir,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
	LogFormat   string `yaml:"log_format,omitempty"`

	// DryRun prints tool commands instead of running them. Flag only.
	DryRun bool `yaml:"-"`
}

// Default returns the built-in configuration rooted at root
func Default(root string) *Config {
	return &Config{
		Root:          root,
		Project:       filepath.Join("tests", "DaxStudio.Tests", "DaxStudio.Tests.csproj"),
		TestArtifact:  filepath.Join("src", "bin", "Debug", "DaxStudio.Tests.dll"),
		AppArtifact:   filepath.Join("src", "bin", "Debug", "DaxStudio.exe"),
		Configuration: "Debug",
		TestFilter:    "FullyQualifiedName~VisualQueryPlan",
	}
}

// Path resolves p against Root unless it is already absolute
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// ProjectPath returns the absolute project file path
func (c *Config) ProjectPath() string { return c.Path(c.Project) }

// TestArtifactPath returns the absolute test assembly path
func (c *Config) TestArtifactPath() string { return c.Path(c.TestArtifact) }

// AppArtifactPath returns the absolute application path
func (c *Config) AppArtifactPath() string { return c.Path(c.AppArtifact) }

// ManifestPath returns the absolute manifest directory, or "" when disabled
func (c *Config) ManifestPath() string { return c.Path(c.ManifestDir) }

// ArtifactExists reports whether path names an existing regular file
func ArtifactExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
