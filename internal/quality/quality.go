// Package quality runs the clang-format and clang-tidy checks over the
// project sources.
package quality

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/visioncraft/conform/internal/console"
	"github.com/visioncraft/conform/internal/discovery"
	"github.com/visioncraft/conform/internal/pipeline"
	"github.com/visioncraft/conform/internal/toolexec"
	"github.com/visioncraft/conform/internal/utils"
)

const (
	StepFormat = "format"
	StepTidy   = "tidy"
)

const bannerWidth = 50

// DefaultClangFormat lists the clang-format binaries tried, in order.
var DefaultClangFormat = []string{"clang-format", "C:/Program Files/LLVM/bin/clang-format.exe"}

var (
	// ErrClangFormatNotFound means none of the candidates answered --version.
	ErrClangFormatNotFound = errors.New("clang-format not found")
	errFormatIssues        = errors.New("formatting issues found")
)

// Options configures a quality run. Relative paths resolve against Root.
type Options struct {
	Root       string
	Sources    []string
	Extensions []string
	BuildDir   string

	ClangFormat []string
	TidyCommand toolexec.Command
	// Parallel bounds concurrent clang-format processes; < 1 means 1.
	Parallel int

	FormatOnly bool
	TidyOnly   bool
	// Verbose prints what clang-format reported for each flagged file.
	Verbose bool

	Spinner func(message string) (stop func())
}

// formatIssue is a file clang-format flagged, or could not be run on.
type formatIssue struct {
	Path   string
	Output string
	Err    error
}

// Quality holds the state shared by the steps.
type Quality struct {
	runner toolexec.Runner
	out    *console.Printer
	opts   Options

	checked int
	issues  []formatIssue
}

// New returns a Quality wired to runner and printing through out.
func New(runner toolexec.Runner, out *console.Printer, opts Options) *Quality {
	if len(opts.ClangFormat) == 0 {
		opts.ClangFormat = DefaultClangFormat
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	return &Quality{runner: runner, out: out, opts: opts}
}

// Pipeline returns the format and tidy steps. Both use the Continue policy so
// a formatting failure still lets static analysis run.
func (q *Quality) Pipeline() *pipeline.Pipeline {
	return pipeline.New("quality",
		pipeline.Step{Name: StepFormat, Policy: pipeline.Continue, Run: q.format, When: func() bool { return !q.opts.TidyOnly }},
		pipeline.Step{Name: StepTidy, Policy: pipeline.Continue, Run: q.tidy, When: func() bool { return !q.opts.FormatOnly }},
	)
}

// Run executes the pipeline between the opening and closing banners.
func (q *Quality) Run(ctx context.Context) (*pipeline.Result, error) {
	rule := strings.Repeat("=", bannerWidth)
	q.out.Println("Running code quality checks...")
	q.out.Println(rule)

	res, err := q.Pipeline().Run(ctx)
	if err != nil {
		return res, err
	}

	p := q.out.Palette()
	q.out.Println()
	q.out.Println(rule)
	if res.Passed() {
		q.out.Printf("%s[SUCCESS] All checks passed!%s\n", p.Green, p.Reset)
	} else {
		q.out.Printf("%s[FAILED] Some checks failed%s\n", p.Red, p.Reset)
	}
	return res, nil
}

func (q *Quality) sourceFiles() ([]string, error) {
	return discovery.Discover(utils.ResolvePaths(q.opts.Sources, q.opts.Root), q.opts.Extensions)
}

// LocateClangFormat returns the first candidate that runs --version
// successfully.
func (q *Quality) LocateClangFormat(ctx context.Context) (string, error) {
	for _, candidate := range q.opts.ClangFormat {
		res, err := q.runner.Run(ctx, toolexec.Command{Name: candidate, Args: []string{"--version"}})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if err == nil && res.Success() {
			return candidate, nil
		}
	}
	return "", ErrClangFormatNotFound
}

func (q *Quality) format(ctx context.Context) error {
	q.out.Println()
	q.out.Println("[FORMAT] Checking code formatting...")

	files, err := q.sourceFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		q.out.Println("No C++ files found")
		return nil
	}

	clangFormat, err := q.LocateClangFormat(ctx)
	if err != nil {
		if errors.Is(err, ErrClangFormatNotFound) {
			q.out.Println("clang-format not found")
		}
		return err
	}

	results, err := q.checkFormat(ctx, clangFormat, files)
	if err != nil {
		return err
	}

	q.checked = len(files)
	q.issues = nil
	for i, f := range files {
		q.out.Println("[*] Checking " + utils.RelativeTo(f, q.opts.Root))
		if r := results[i]; r != nil {
			q.issues = append(q.issues, *r)
		}
	}
	q.out.Printf("Files checked: %d, Issues: %d\n", q.checked, len(q.issues))
	if q.opts.Verbose {
		q.printIssues()
	}

	if len(q.issues) > 0 {
		return fmt.Errorf("%w: %d file(s)", errFormatIssues, len(q.issues))
	}
	return nil
}

func (q *Quality) printIssues() {
	for _, issue := range q.issues {
		rel := utils.RelativeTo(issue.Path, q.opts.Root)
		if issue.Err != nil {
			q.out.Println("[!] " + rel + ": " + issue.Err.Error())
			continue
		}
		q.out.Println("[!] " + rel)
		for _, line := range strings.Split(strings.TrimRight(issue.Output, "\n"), "\n") {
			if line != "" {
				q.out.Println("    " + line)
			}
		}
	}
}

// checkFormat runs clang-format on every file with bounded parallelism.
// Results are stored by index so reporting order matches discovery order.
func (q *Quality) checkFormat(ctx context.Context, clangFormat string, files []string) ([]*formatIssue, error) {
	if q.opts.Spinner != nil {
		stop := q.opts.Spinner(fmt.Sprintf("Checking %d file(s)...", len(files)))
		defer stop()
	}

	results := make([]*formatIssue, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.opts.Parallel)

	for i, f := range files {
		g.Go(func() error {
			cmd := toolexec.Command{Name: clangFormat, Args: []string{"--dry-run", "--Werror", f}}
			res, err := q.runner.Run(gctx, cmd)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				// A launch fault or timeout counts against this file only.
				results[i] = &formatIssue{Path: f, Err: err}
				return nil
			}
			if !res.Success() {
				results[i] = &formatIssue{Path: f, Output: res.Output}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (q *Quality) tidy(ctx context.Context) error {
	q.out.Println()
	q.out.Println("[TIDY] Running static analysis...")

	if info, err := os.Stat(utils.ResolvePath(q.opts.BuildDir, q.opts.Root)); err == nil && info.IsDir() && q.opts.TidyCommand.Name != "" {
		q.out.Println("[*] Running clang-tidy via CMake")

		cmd := q.opts.TidyCommand
		if cmd.Dir == "" {
			cmd.Dir = q.opts.Root
		}
		var stop func()
		if q.opts.Spinner != nil {
			stop = q.opts.Spinner("Running clang-tidy...")
		}
		res, err := q.runner.Run(ctx, cmd)
		if stop != nil {
			stop()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err == nil && res.Success() {
			q.out.Println("Static analysis completed")
			return nil
		}
	}

	q.out.Println("CMake target not available, skipping clang-tidy")
	return nil
}

