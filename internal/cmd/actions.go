package cmd

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/daxbuild/internal/config"
	"github.com/felixgeelhaar/daxbuild/internal/exec"
	"github.com/felixgeelhaar/daxbuild/internal/log"
	"github.com/felixgeelhaar/daxbuild/internal/orchestrator"
	"github.com/felixgeelhaar/daxbuild/internal/ux"
)

// newMSBuildCommand creates one of the plain build-driver actions
func newMSBuildCommand(use, short string, op func(*orchestrator.Orchestrator, context.Context) error, opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := newOrchestrator(cmd, opts)
			if err != nil {
				return err
			}
			return op(o, cmd.Context())
		},
	}
}

func newTestCommand(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [filter]",
		Short: "Run the tests, building first if the test assembly is missing",
		Long: `Run the test assembly with the VSTest console runner.

The optional filter is passed verbatim as --TestCaseFilter; without one the
configured default filter is used. A filter starting with "-" must follow
"--", as in: daxbuild test -- -TestCategory=Slow. Failing tests are reported
but do not fail the command unless --strict is given.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := newOrchestrator(cmd, opts)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("strict") {
				o.Config.StrictTests, _ = cmd.Flags().GetBool("strict")
			}

			var filter string
			if len(args) > 0 {
				filter = args[0]
			}
			_, err = o.Test(cmd.Context(), filter)
			return err
		},
	}

	cmd.Flags().Bool("strict", false, "exit with the test runner's code when tests fail")
	return cmd
}

func newRunCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Launch the application, building first if it is missing",
		Long: `Launch the application detached from daxbuild. The command returns
as soon as the application has started.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := newOrchestrator(cmd, opts)
			if err != nil {
				return err
			}
			_, err = o.Run(cmd.Context())
			return err
		},
	}
}

// newOrchestrator loads configuration, applies flag overrides and wires the
// logger, executor and printer for one action.
func newOrchestrator(cmd *cobra.Command, opts Options) (*orchestrator.Orchestrator, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.LoadOptions{
		Root:      cc.Root,
		File:      cc.ConfigFile,
		LookupEnv: opts.LookupEnv,
	})
	if err != nil {
		return nil, err
	}
	cc.apply(cfg)

	invocationID := uuid.NewString()
	logger := log.New(log.CLIConfig(cfg.LogLevel, cfg.LogFormat, opts.Stderr)).
		With("invocation_id", invocationID)
	log.SetDefaultLogger(logger)

	logger.Debug("configuration loaded",
		"action", cmd.Name(),
		"root", cfg.Root,
		"dry_run", cfg.DryRun,
		"manifest_dir", cfg.ManifestPath())

	o := orchestrator.New(cfg, newExecutor(cfg, opts, invocationID, logger))
	o.Printer = ux.NewPrinter(opts.Stdout, cc.NoColor)
	o.Logger = logger
	if opts.Tools != nil {
		o.Tools = opts.Tools
	}
	return o, nil
}

// apply overlays flag values on cfg. Empty flags leave cfg untouched.
func (cc *CommandContext) apply(cfg *config.Config) {
	cfg.DryRun = cc.DryRun
	if cc.ManifestDir != "" {
		cfg.ManifestDir = cc.ManifestDir
	}
	if cc.LogLevel != "" {
		cfg.LogLevel = cc.LogLevel
	}
	if cc.LogFormat != "" {
		cfg.LogFormat = cc.LogFormat
	}
}

func newExecutor(cfg *config.Config, opts Options, invocationID string, logger *log.Logger) exec.Executor {
	executor := opts.Executor
	if executor == nil {
		if cfg.DryRun {
			return &exec.DryRunner{Out: opts.Stdout}
		}
		executor = exec.NewLocalRunner(opts.Stdin, opts.Stdout, opts.Stderr)
	}

	if cfg.ManifestDir == "" || cfg.DryRun {
		return executor
	}
	return &exec.ManifestRecorder{
		Next:         executor,
		Dir:          cfg.ManifestPath(),
		InvocationID: invocationID,
		Artifacts:    []string{cfg.TestArtifactPath(), cfg.AppArtifactPath()},
		Logger:       logger,
	}
}
