package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visioncraft/conform/internal/coverage"
	"github.com/visioncraft/conform/internal/pipeline"
	"github.com/visioncraft/conform/internal/quality"
	"github.com/visioncraft/conform/internal/toolexec"
)

func newTidyCommand(a *app) *cobra.Command {
	var opts quality.TidyOptions
	cmd := &cobra.Command{
		Use:   "tidy [file...]",
		Short: "Run clang-tidy on files (skipped without a configured build)",
		Long: `Run clang-tidy on the given files.

Per-file analysis needs compile_commands.json from a configured build, so the
files are currently skipped. Run 'cmake --build build --target tidy-all' for
full static analysis. This command always succeeds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			quality.ReportTidySkip(cmd.OutOrStdout(), args, opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.ConfigFile, "config-file", ".clang-tidy", "Path to clang-tidy config")
	cmd.Flags().StringVar(&opts.HeaderFilter, "header-filter", ".*", "Header filter regex")
	return cmd
}

func newQualityCommand(a *app) *cobra.Command {
	var (
		formatOnly bool
		tidyOnly   bool
		verbose    bool
		timings    bool
	)
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Run clang-format and clang-tidy checks",
		Long: `Run clang-format (dry run, warnings as errors) over every source file in the
configured source directories, then clang-tidy through the tidy-all CMake
target when a build directory exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatOnly && tidyOnly {
				return fmt.Errorf("--format-only and --tidy-only are mutually exclusive")
			}
			tidyCmd, err := toolexec.ParseCommand(a.cfg.Tools.TidyCommand)
			if err != nil {
				return fmt.Errorf("tools.tidy_command: %w", err)
			}

			q := quality.New(a.runner(), a.printer(cmd), quality.Options{
				Root:        a.cfg.Root,
				Sources:     a.cfg.Paths.Sources,
				Extensions:  a.cfg.Paths.Extensions,
				BuildDir:    a.cfg.Paths.BuildDir,
				ClangFormat: a.cfg.Tools.ClangFormat,
				TidyCommand: tidyCmd,
				Parallel:    a.cfg.Tools.FormatParallel,
				FormatOnly:  formatOnly,
				TidyOnly:    tidyOnly,
				Verbose:     verbose,
				Spinner:     a.spinner(cmd),
			})
			res, err := q.Run(cmd.Context())
			writeTimings(cmd, timings, res)
			return pipelineError("quality checks", res, err)
		},
	}
	cmd.Flags().BoolVar(&formatOnly, "format-only", false, "Run only formatting checks")
	cmd.Flags().BoolVar(&tidyOnly, "tidy-only", false, "Run only static analysis")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show clang-format output for files with issues")
	cmd.Flags().BoolVar(&timings, "timings", false, "Print a per-step timing table")
	return cmd
}

func newCoverageCommand(a *app) *cobra.Command {
	var (
		opts    coverage.Options
		timings bool
	)
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Build with coverage instrumentation and generate LLVM coverage reports",
		Long: `Run test coverage analysis using the LLVM tools.

Requires cmake, llvm-cov and llvm-profdata on PATH and a vcpkg toolchain
(VCPKG_ROOT, or the platform default location).`,
		Example: `  conform coverage                    # Run full coverage
  conform coverage --clean            # Clean build first
  conform coverage --open             # Open report in browser
  conform coverage --no-build --open  # Regenerate report only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = a.cfg.Name
			opts.ProjectRoot = a.cfg.Root
			opts.BuildDir = a.cfg.BuildPath()
			opts.TestBinary = a.cfg.Coverage.TestBinary
			opts.HTMLReport = a.cfg.Coverage.HTMLReport
			opts.ProfData = a.cfg.Coverage.ProfData
			opts.CMakeArgs = a.cfg.Coverage.CMakeArgs
			opts.GOOS = a.env.GOOS
			opts.Getenv = a.env.Getenv
			opts.Spinner = a.spinner(cmd)

			res, err := coverage.New(a.runner(), a.printer(cmd), opts).Run(cmd.Context())
			writeTimings(cmd, timings, res)
			return pipelineError("coverage", res, err)
		},
	}
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Clean build directory before running")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open HTML report in browser after generation")
	cmd.Flags().BoolVar(&opts.NoBuild, "no-build", false, "Skip build step (only regenerate coverage from existing data)")
	cmd.Flags().BoolVar(&timings, "timings", false, "Print a per-step timing table")
	return cmd
}

func writeTimings(cmd *cobra.Command, enabled bool, res *pipeline.Result) {
	if !enabled || res == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out) //nolint:errcheck
	if err := res.WriteTable(out); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "writing timings: %v\n", err) //nolint:errcheck
	}
}
