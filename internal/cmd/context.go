package cmd

import (
	"github.com/spf13/cobra"
)

// CommandContext holds the global flag values of one invocation.
// Commands read it in RunE instead of package-level flag variables so the
// root command can be built and executed repeatedly in tests.
type CommandContext struct {
	// Configuration
	ConfigFile  string
	Root        string
	ManifestDir string

	// Execution
	DryRun bool

	// Output control
	NoColor   bool
	LogLevel  string
	LogFormat string
}

// NewCommandContext extracts command context from cobra.Command flags:
//
//	func runBuild(cmd *cobra.Command, args []string) error {
//		cc, err := NewCommandContext(cmd)
//		if err != nil {
//			return err
//		}
//		// Use cc.Root, cc.DryRun, etc.
//	}
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	root, err := flags.GetString("root")
	if err != nil {
		return nil, err
	}

	manifestDir, err := flags.GetString("manifest-dir")
	if err != nil {
		return nil, err
	}

	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}

	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}

	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		ConfigFile:  configFile,
		Root:        root,
		ManifestDir: manifestDir,
		DryRun:      dryRun,
		NoColor:     noColor,
		LogLevel:    logLevel,
		LogFormat:   logFormat,
	}, nil
}
