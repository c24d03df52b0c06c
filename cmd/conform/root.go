package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/visioncraft/conform/internal/console"
	"github.com/visioncraft/conform/internal/pipeline"
	"github.com/visioncraft/conform/internal/projectconfig"
	"github.com/visioncraft/conform/internal/toolexec"
)

var version = "dev"

// app is the state resolved once in PersistentPreRunE and shared by all
// subcommands.
type app struct {
	debug      bool
	colorMode  string
	configPath string

	cfg     *projectconfig.ProjectConfig
	palette console.Palette

	// env is inspected when resolving the palette.
	env console.Environment
	// newRunner builds the tool runner; tests replace it with a mock.
	newRunner func(timeout time.Duration) toolexec.Runner
	// getwd returns the working directory config discovery starts from.
	getwd func() (string, error)
}

func newApp() *app {
	return &app{
		env: console.Environment{GOOS: runtime.GOOS},
		newRunner: func(timeout time.Duration) toolexec.Runner {
			return toolexec.NewExecRunner(timeout)
		},
		getwd: os.Getwd,
	}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conform",
		Short: "Conform - style conformance checks and tool pipelines for C++ sources",
		Long: `Conform checks C++ sources against the project's style rules and drives
the external quality tools.

Per-file checks (header guards, TODO/FIXME format, namespace comments) take
explicit file lists, as passed by pre-commit hooks. The quality and coverage
commands wrap clang-format, clang-tidy, cmake and the LLVM coverage tools.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&a.colorMode, "color", string(console.ColorAuto), "Colorize output: auto | always | never")
	flags.StringVar(&a.configPath, "config", "", "Path to a .conform.yaml (default: search upward from the working directory)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if a.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return a.setup(cmd)
	}

	cmd.AddCommand(newRuleCommand(a, ruleCommandSpecs[0]))
	cmd.AddCommand(newRuleCommand(a, ruleCommandSpecs[1]))
	cmd.AddCommand(newRuleCommand(a, ruleCommandSpecs[2]))
	cmd.AddCommand(newCheckCommand(a))
	cmd.AddCommand(newTidyCommand(a))
	cmd.AddCommand(newQualityCommand(a))
	cmd.AddCommand(newCoverageCommand(a))
	cmd.AddCommand(newInitCommand(a))

	return cmd
}

// setup resolves the palette and loads the project configuration.
func (a *app) setup(cmd *cobra.Command) error {
	palette, err := console.ResolvePalette(console.ColorMode(a.colorMode), cmd.OutOrStdout(), a.env)
	if err != nil {
		return err
	}
	a.palette = palette

	if a.configPath != "" {
		a.cfg, err = projectconfig.LoadFile(a.configPath)
	} else {
		var wd string
		wd, err = a.getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		a.cfg, err = projectconfig.Load(wd)
	}
	if err != nil {
		return err
	}
	slog.Debug("configuration loaded", "file", a.cfg.File, "root", a.cfg.Root)
	return nil
}

func (a *app) printer(cmd *cobra.Command) *console.Printer {
	return console.NewPrinter(cmd.OutOrStdout(), a.palette)
}

func (a *app) runner() toolexec.Runner {
	return a.newRunner(a.cfg.ToolTimeout())
}

// spinner returns a spinner factory when stdout is an interactive terminal.
func (a *app) spinner(cmd *cobra.Command) func(string) func() {
	out := cmd.OutOrStdout()
	isTerminal := a.env.IsTerminal
	if isTerminal == nil {
		isTerminal = console.IsTerminal
	}
	if !isTerminal(out) {
		return nil
	}
	return a.printer(cmd).StartSpinner
}

// pipelineError maps a pipeline outcome onto the CLI error types.
func pipelineError(name string, res *pipeline.Result, err error) error {
	switch {
	case err == nil && res.Passed():
		return nil
	case errors.Is(err, context.Canceled):
		return &InterruptedError{Err: err}
	case err != nil:
		return &CheckFailureError{Message: err.Error()}
	default:
		return &CheckFailureError{Message: name + " failed"}
	}
}

func execute(ctx context.Context) error {
	rootCmd := newRootCommand(newApp())
	return rootCmd.ExecuteContext(ctx)
}
