package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/daxbuild/internal/errors"
	"github.com/felixgeelhaar/daxbuild/internal/exec"
	"github.com/felixgeelhaar/daxbuild/internal/exitcode"
	"github.com/felixgeelhaar/daxbuild/internal/orchestrator"
	"github.com/felixgeelhaar/daxbuild/internal/version"
)

// Options are the streams and collaborators a dispatch uses.
// Zero values select the real process environment.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LookupEnv reads environment variables; nil means os.LookupEnv
	LookupEnv func(key string) (string, bool)

	// Executor replaces the local (or dry-run) runner when set
	Executor exec.Executor

	// Tools replaces executable discovery when set
	Tools orchestrator.ToolResolver
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.LookupEnv == nil {
		o.LookupEnv = os.LookupEnv
	}
	return o
}

// NewRootCommand builds the daxbuild command tree
func NewRootCommand(opts Options) *cobra.Command {
	opts = opts.withDefaults()

	// Actions are matched regardless of case: BUILD, Build and build are the same.
	cobra.EnableCaseInsensitive = true

	root := &cobra.Command{
		Use:   "daxbuild <command> [args]",
		Short: "Build, test and run the DAX Studio solution",
		Long: `daxbuild drives MSBuild and the VSTest console runner for a repository.
test and run build the project first when their artifact is missing.`,
		Version:       version.GetInfo().Short(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			return unknownAction(cmd, args[0])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return errors.NewMissingActionError()
		},
	}

	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetVersionTemplate(version.GetInfo().String() + "\n")

	// "help" and "completion" would otherwise be accepted as actions. cobra
	// always installs a help command, so its replacement reports itself as
	// unknown like any other name.
	root.SetHelpCommand(&cobra.Command{
		Use:                "no-help",
		Hidden:             true,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := cmd.CalledAs()
			if name == "" {
				name = cmd.Name()
			}
			return unknownAction(cmd.Root(), name)
		},
	})
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is <root>/daxbuild.yaml)")
	flags.String("root", "", "repository root (default is the working directory)")
	flags.Bool("dry-run", false, "print tool commands instead of running them")
	flags.String("manifest-dir", "", "write a run manifest per executed step to this directory")
	flags.String("log-level", "", "log level: debug, info, warn, error (default warn)")
	flags.String("log-format", "", "log format: text or json (default text)")
	flags.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		newMSBuildCommand("build", "Build the test project", (*orchestrator.Orchestrator).Build, opts),
		newMSBuildCommand("rebuild", "Clean and rebuild the test project", (*orchestrator.Orchestrator).Rebuild, opts),
		newMSBuildCommand("restore", "Restore the test project's packages", (*orchestrator.Orchestrator).Restore, opts),
		newTestCommand(opts),
		newRunCommand(opts),
	)

	return root
}

// unknownAction prints the unknown-command message followed by the usage of root
func unknownAction(root *cobra.Command, name string) error {
	fmt.Fprintf(root.OutOrStdout(), "Unknown command: %s\n\n", name)
	fmt.Fprint(root.OutOrStdout(), root.UsageString())
	return errors.NewUnknownActionError(name)
}

// Dispatch runs one invocation and returns the process exit code. Usage
// text and progress go to stdout; errors are reported on stderr.
func Dispatch(ctx context.Context, args []string, opts Options) int {
	opts = opts.withDefaults()

	// cobra falls back to os.Args when given nil
	if args == nil {
		args = []string{}
	}

	root := NewRootCommand(opts)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitcode.Success
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		fmt.Fprintln(opts.Stderr, "\nOperation cancelled by user")
		return exitcode.Interrupted
	case errors.HasCode(err, errors.ErrCodeUsageMissingAction), errors.HasCode(err, errors.ErrCodeUsageUnknownAction):
		// usage has already been printed
	default:
		fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
	}
	return exitcode.DetermineExitCode(err)
}
