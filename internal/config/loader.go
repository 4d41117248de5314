package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/daxbuild/internal/errors"
)

// Environment variables read by Load
const (
	EnvRoot          = "DAXBUILD_ROOT"
	EnvMSBuild       = "DAXBUILD_MSBUILD"
	EnvVSTest        = "DAXBUILD_VSTEST"
	EnvProject       = "DAXBUILD_PROJECT"
	EnvTestArtifact  = "DAXBUILD_TEST_ARTIFACT"
	EnvAppArtifact   = "DAXBUILD_APP_ARTIFACT"
	EnvConfiguration = "DAXBUILD_CONFIGURATION"
	EnvTestFilter    = "DAXBUILD_TEST_FILTER"
	EnvStrictTests   = "DAXBUILD_STRICT_TESTS"
	EnvManifestDir   = "DAXBUILD_MANIFEST_DIR"
	EnvLogLevel      = "DAXBUILD_LOG_LEVEL"
)

// envFiles are read from the repository root; later files win over earlier ones
var envFiles = []string{".env", ".env.local"}

// LoadOptions controls where Load looks for configuration
type LoadOptions struct {
	// Root overrides the repository root (the --root flag)
	Root string
	// File is an explicit config file (the --config flag). When empty,
	// daxbuild.yaml in the root is used if it exists.
	File string
	// LookupEnv reads the process environment; nil means os.LookupEnv
	LookupEnv func(key string) (string, bool)
}

// Load builds the configuration from defaults, the YAML file, .env files and
// the environment, in increasing order of precedence. Flags are applied by
// the caller on top of the result.
func Load(opts LoadOptions) (*Config, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	root, rootPinned := opts.Root, opts.Root != ""
	if !rootPinned {
		if v, ok := lookup(EnvRoot); ok && strings.TrimSpace(v) != "" {
			root, rootPinned = v, true
		}
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	cfg := Default(root)

	file, explicit := opts.File, opts.File != ""
	if !explicit {
		file = filepath.Join(root, DefaultFileName)
	}
	if err := cfg.mergeFile(file, explicit, rootPinned); err != nil {
		return nil, err
	}

	dotenv, err := readEnvFiles(cfg.Root)
	if err != nil {
		return nil, err
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file onto c. A missing default file is fine;
// a missing explicit file is an error.
func (c *Config) mergeFile(path string, explicit, rootPinned bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.Wrap(errors.ErrCodeConfigUnmarshal, fmt.Sprintf("read configuration file: %s", path), err)
	}

	root := c.Root
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.NewConfigUnmarshalError(path, err)
	}

	switch {
	case rootPinned || c.Root == "":
		c.Root = root
	case !filepath.IsAbs(c.Root):
		c.Root = filepath.Join(filepath.Dir(path), c.Root)
	}
	return nil
}

func readEnvFiles(root string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, name := range envFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigUnmarshal, fmt.Sprintf("read env file: %s", path), err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged, nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvMSBuild:       &c.MSBuild,
		EnvVSTest:        &c.VSTest,
		EnvProject:       &c.Project,
		EnvTestArtifact:  &c.TestArtifact,
		EnvAppArtifact:   &c.AppArtifact,
		EnvConfiguration: &c.Configuration,
		EnvTestFilter:    &c.TestFilter,
		EnvManifestDir:   &c.ManifestDir,
		EnvLogLevel:      &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := env(EnvStrictTests); ok && strings.TrimSpace(v) != "" {
		strict, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.NewConfigInvalidError(fmt.Sprintf("%s=%q is not a boolean", EnvStrictTests, v))
		}
		c.StrictTests = strict
	}
	return nil
}

// Validate checks the configuration for values no operation could work with
func (c *Config) Validate() error {
	info, err := os.Stat(c.Root)
	if err != nil {
		return errors.NewConfigInvalidError(fmt.Sprintf("repository root %s: %v", c.Root, err))
	}
	if !info.IsDir() {
		return errors.NewConfigInvalidError(fmt.Sprintf("repository root %s is not a directory", c.Root))
	}

	required := []struct {
		name  string
		value string
	}{
		{"project", c.Project},
		{"test_artifact", c.TestArtifact},
		{"app_artifact", c.AppArtifact},
		{"configuration", c.Configuration},
		{"test_filter", c.TestFilter},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.NewConfigInvalidError(fmt.Sprintf("%s must not be empty", r.name))
		}
	}
	return nil
}
