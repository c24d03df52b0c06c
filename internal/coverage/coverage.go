// Package coverage builds the LLVM coverage pipeline: validate the toolchain,
// configure and build with instrumentation, run the coverage-html target and
// summarize the result.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/visioncraft/conform/internal/console"
	"github.com/visioncraft/conform/internal/pipeline"
	"github.com/visioncraft/conform/internal/toolexec"
	"github.com/visioncraft/conform/internal/utils"
)

// Step names, in pipeline order.
const (
	StepValidate      = "validate"
	StepClean         = "clean"
	StepConfigure     = "configure"
	StepBuild         = "build"
	StepCoverageClean = "coverage-clean"
	StepCoverageHTML  = "coverage-html"
	StepSummary       = "summary"
	StepResults       = "results"
)

// RequiredTools must be on PATH before anything runs.
var RequiredTools = []string{"cmake", "llvm-cov", "llvm-profdata"}

var (
	errMissingTools = errors.New("missing required tools")
	errNoReport     = errors.New("HTML report was not generated")
)

// Options configures a coverage run. Relative artifact paths are resolved
// against BuildDir.
type Options struct {
	// Name is the project name shown in the opening banner.
	Name        string
	ProjectRoot string
	BuildDir    string

	Clean   bool
	Open    bool
	NoBuild bool

	TestBinary string
	HTMLReport string
	ProfData   string
	CMakeArgs  []string

	// GOOS defaults to runtime.GOOS.
	GOOS string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// HomeDir defaults to os.UserHomeDir.
	HomeDir func() (string, error)
	// Spinner, if set, animates while long tool invocations run.
	Spinner func(message string) (stop func())
}

// Coverage holds the state shared by the pipeline steps.
type Coverage struct {
	runner toolexec.Runner
	out    *console.Printer
	opts   Options

	toolchain string
}

// New returns a Coverage wired to runner and printing through out.
func New(runner toolexec.Runner, out *console.Printer, opts Options) *Coverage {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.HomeDir == nil {
		opts.HomeDir = os.UserHomeDir
	}
	return &Coverage{runner: runner, out: out, opts: opts}
}

// Pipeline returns the ordered coverage steps.
func (c *Coverage) Pipeline() *pipeline.Pipeline {
	building := func() bool { return !c.opts.NoBuild }

	return pipeline.New("coverage",
		pipeline.Step{Name: StepValidate, Policy: pipeline.Abort, Run: c.validate},
		pipeline.Step{Name: StepClean, Policy: pipeline.Abort, Run: c.clean, When: func() bool { return c.opts.Clean }},
		pipeline.Step{Name: StepConfigure, Policy: pipeline.Abort, Run: c.configure, When: building},
		pipeline.Step{Name: StepBuild, Policy: pipeline.Abort, Run: c.build, When: building},
		pipeline.Step{Name: StepCoverageClean, Policy: pipeline.Soft, Run: c.coverageClean, When: building},
		pipeline.Step{Name: StepCoverageHTML, Policy: pipeline.Soft, Run: c.coverageHTML, Verify: c.verifyReport},
		pipeline.Step{Name: StepSummary, Policy: pipeline.Soft, Run: c.summary},
		pipeline.Step{Name: StepResults, Policy: pipeline.Abort, Run: c.results},
	)
}

// Run prints the banner, runs the pipeline and prints the closing header
// when it completes.
func (c *Coverage) Run(ctx context.Context) (*pipeline.Result, error) {
	c.out.Println()
	c.out.Title(strings.TrimSpace(c.opts.Name + " Coverage Analysis"))
	c.out.Note("Project: " + c.opts.ProjectRoot)

	res, err := c.Pipeline().Run(ctx)
	if err != nil {
		return res, err
	}
	c.out.Header("Coverage Analysis Complete")
	return res, nil
}

func (c *Coverage) artifact(rel string) string {
	return utils.ResolvePath(filepath.FromSlash(rel), c.opts.BuildDir)
}

// ReportPath is the generated HTML index.
func (c *Coverage) ReportPath() string { return c.artifact(c.opts.HTMLReport) }

// ProfDataPath is the merged profile.
func (c *Coverage) ProfDataPath() string { return c.artifact(c.opts.ProfData) }

// TestExecutable is the instrumented test binary, with .exe on Windows.
func (c *Coverage) TestExecutable() string {
	p := c.artifact(c.opts.TestBinary)
	if c.opts.GOOS == "windows" && filepath.Ext(p) != ".exe" {
		p += ".exe"
	}
	return p
}

// VcpkgToolchain locates vcpkg.cmake, preferring $VCPKG_ROOT over the
// platform default. On failure it returns the default path it looked at.
func (c *Coverage) VcpkgToolchain() (string, error) {
	if root := c.opts.Getenv("VCPKG_ROOT"); root != "" {
		p := filepath.Join(root, "scripts", "buildsystems", "vcpkg.cmake")
		if fileExists(p) {
			return p, nil
		}
	}

	var def string
	if c.opts.GOOS == "windows" {
		def = "C:/ProgramData/vcpkg/scripts/buildsystems/vcpkg.cmake"
	} else {
		home, err := c.opts.HomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		def = filepath.Join(home, "vcpkg", "scripts", "buildsystems", "vcpkg.cmake")
	}
	if fileExists(def) {
		return def, nil
	}
	return def, fmt.Errorf("vcpkg toolchain not found at: %s", def)
}

func (c *Coverage) validate(_ context.Context) error {
	c.out.Header("Validating Environment")
	c.out.Step("Checking for required tools...")

	missing := false
	for _, tool := range RequiredTools {
		p, err := c.runner.LookPath(tool)
		if err != nil {
			c.out.Error(tool + " not found in PATH")
			missing = true
			continue
		}
		c.out.Success(fmt.Sprintf("%s found: %s", tool, p))
	}

	tc, err := c.VcpkgToolchain()
	if err != nil {
		c.out.Error(err.Error())
		c.out.Warning("Set VCPKG_ROOT environment variable or install vcpkg")
		missing = true
	} else {
		c.toolchain = tc
		c.out.Success("vcpkg toolchain found: " + tc)
	}

	if missing {
		c.out.Error("Missing required tools. Please install them and try again.")
		return errMissingTools
	}
	return nil
}

func (c *Coverage) clean(_ context.Context) error {
	c.out.Header("Cleaning Build Directory")

	if _, err := os.Stat(c.opts.BuildDir); err != nil {
		if os.IsNotExist(err) {
			c.out.Warning("Build directory doesn't exist, skipping clean")
			return nil
		}
		return fmt.Errorf("checking build directory: %w", err)
	}
	c.out.Step(fmt.Sprintf("Removing %s...", c.opts.BuildDir))
	if err := os.RemoveAll(c.opts.BuildDir); err != nil {
		return fmt.Errorf("removing build directory: %w", err)
	}
	c.out.Success("Build directory cleaned")
	return nil
}

func (c *Coverage) configure(ctx context.Context) error {
	c.out.Header("Configuring CMake with Coverage")
	c.out.Step("Running CMake configuration...")

	args := []string{"-S", c.opts.ProjectRoot, "-B", c.opts.BuildDir, "-DCMAKE_TOOLCHAIN_FILE=" + c.toolchain}
	args = append(args, c.opts.CMakeArgs...)

	res, err := c.mustRun(ctx, "Configuring", toolexec.Command{Name: "cmake", Args: args})
	if err != nil {
		return err
	}
	c.out.Println(res.Output)
	c.out.Success("CMake configuration complete")
	return nil
}

func (c *Coverage) build(ctx context.Context) error {
	c.out.Header("Building Project")
	c.out.Step("Building project with coverage instrumentation...")

	cmd := toolexec.Command{Name: "cmake", Args: []string{"--build", c.opts.BuildDir, "--config", "Debug", "-j"}}
	if _, err := c.mustRun(ctx, "Building", cmd); err != nil {
		return err
	}
	c.out.Success("Build complete")
	return nil
}

func (c *Coverage) coverageClean(ctx context.Context) error {
	c.out.Header("Cleaning Previous Coverage Data")
	c.out.Step("Running coverage-clean target...")

	// The target may not exist; a non-zero exit is not an error here.
	if _, err := c.run(ctx, "Cleaning coverage data", c.target("coverage-clean")); err != nil {
		return err
	}
	c.out.Success("Previous coverage data cleaned")
	return nil
}

func (c *Coverage) coverageHTML(ctx context.Context) error {
	if c.opts.NoBuild {
		c.out.Header("Skipping Build (--no-build)")
		c.out.Step("Regenerating coverage report from existing data...")
	}
	c.out.Header("Running Tests with Coverage")
	c.out.Step("Running coverage target (this will run tests and generate reports)...")

	res, err := c.run(ctx, "Running tests", c.target("coverage-html"))
	if err != nil {
		return err
	}
	if !res.Success() {
		if !fileExists(c.ReportPath()) {
			c.out.Println(res.Output)
		}
		return fmt.Errorf("coverage-html exited with status %d", res.ExitCode)
	}
	return nil
}

func (c *Coverage) verifyReport(_ context.Context) error {
	if !fileExists(c.ReportPath()) {
		c.out.Error("HTML report was not generated")
		return fmt.Errorf("%w: %s", errNoReport, c.ReportPath())
	}
	c.out.Success("Coverage reports generated")
	return nil
}

func (c *Coverage) summary(ctx context.Context) error {
	c.out.Header("Coverage Summary")
	c.out.Step("Generating coverage summary...")

	cmd := toolexec.Command{
		Name: "llvm-cov",
		Args: []string{"report", c.TestExecutable(), "-instr-profile=" + c.ProfDataPath()},
	}
	res, err := c.runner.Run(ctx, cmd)
	if err == nil && res.Success() {
		c.out.Println(res.Output)
		return nil
	}
	c.out.Warning("Could not generate detailed summary (profdata may have format issues)")
	c.out.Warning("HTML report should still be available")
	if err != nil {
		return err
	}
	return fmt.Errorf("llvm-cov report exited with status %d", res.ExitCode)
}

func (c *Coverage) results(ctx context.Context) error {
	c.out.Header("Results")

	report := c.ReportPath()
	info, err := os.Stat(report)
	if err != nil {
		c.out.Error("HTML report not found. Check build output for errors.")
		return fmt.Errorf("%w: %s", errNoReport, report)
	}

	p := c.out.Palette()
	c.out.Success("HTML report generated: " + report)
	c.out.Success("Coverage data: " + c.ProfDataPath())
	c.out.Step("Report size: " + humanize.Bytes(uint64(info.Size())))

	c.out.Println()
	c.out.Printf("%sTo view the report:%s\n", p.Blue, p.Reset)
	c.out.Bullet("1.", "Open in browser: "+fileURL(report))
	c.out.Bullet("2.", "Or double-click: "+report)

	if c.opts.Open {
		c.out.Println()
		c.openReport(ctx, report)
	}

	c.out.Println()
	c.out.Printf("%sAdditional coverage targets:%s\n", p.Blue, p.Reset)
	c.out.Bullet("•", "cmake --build build --target coverage-report    (text report)")
	c.out.Bullet("•", "cmake --build build --target coverage-summary   (brief summary)")
	c.out.Bullet("•", "cmake --build build --target coverage-clean     (clean coverage data)")
	c.out.Println()
	return nil
}

// openReport is best effort; failures only warn.
func (c *Coverage) openReport(ctx context.Context, report string) {
	c.out.Step("Opening report in browser...")

	cmd := OpenCommand(c.opts.GOOS, report)
	res, err := c.runner.Run(ctx, cmd)
	switch {
	case err != nil:
		c.out.Warning(fmt.Sprintf("Could not open browser automatically: %v", err))
	case !res.Success():
		c.out.Warning(fmt.Sprintf("Could not open browser automatically: %s exited with status %d", cmd.Name, res.ExitCode))
	default:
		c.out.Success("Opened report in browser")
	}
}

// OpenCommand returns the platform command that opens path in the default
// browser.
func OpenCommand(goos, path string) toolexec.Command {
	switch goos {
	case "windows":
		return toolexec.Command{Name: "cmd", Args: []string{"/c", "start", "", path}}
	case "darwin":
		return toolexec.Command{Name: "open", Args: []string{path}}
	default:
		return toolexec.Command{Name: "xdg-open", Args: []string{path}}
	}
}

func (c *Coverage) target(name string) toolexec.Command {
	return toolexec.Command{Name: "cmake", Args: []string{"--build", c.opts.BuildDir, "--target", name}}
}

func (c *Coverage) run(ctx context.Context, label string, cmd toolexec.Command) (*toolexec.Result, error) {
	if c.opts.Spinner != nil {
		stop := c.opts.Spinner(label + "...")
		defer stop()
	}
	return c.runner.Run(ctx, cmd)
}

// mustRun treats a non-zero exit as a failure and echoes the tool output.
func (c *Coverage) mustRun(ctx context.Context, label string, cmd toolexec.Command) (*toolexec.Result, error) {
	res, err := c.run(ctx, label, cmd)
	if err != nil {
		c.out.Error("Command failed: " + cmd.String())
		return nil, err
	}
	if !res.Success() {
		c.out.Error("Command failed: " + cmd.String())
		c.out.Println(res.Output)
		return nil, fmt.Errorf("%s exited with status %d", cmd.Name, res.ExitCode)
	}
	return res, nil
}

func fileURL(path string) string {
	return "file:///" + strings.TrimPrefix(filepath.ToSlash(path), "/")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
