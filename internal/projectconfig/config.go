// Package projectconfig provides the ProjectConfig struct and loader for
// .conform.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/visioncraft/conform/internal/utils"
	"github.com/visioncraft/conform/internal/validation"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".conform.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultName       = "Vision-Craft"
	DefaultSourceRoot = "src/"
	DefaultBuildDir   = "build"

	DefaultToolTimeout    = 300
	DefaultTidyCommand    = "cmake --build build --target tidy-all"
	DefaultFormatParallel = 1

	DefaultTestBinary = "tests/TestVisionCraftNodes"
	DefaultHTMLReport = "coverage/html/index.html"
	DefaultProfData   = "coverage/coverage.profdata"
)

// maxParentWalk bounds the upward search for FileName.
const maxParentWalk = 10

var (
	defaultSources     = []string{"src", "tests"}
	defaultExtensions  = []string{".cpp", ".hpp", ".h"}
	defaultClangFormat = []string{"clang-format", "C:/Program Files/LLVM/bin/clang-format.exe"}
	defaultCMakeArgs   = []string{"-DENABLE_COVERAGE=ON", "-DBUILD_TESTS=ON", "-DCMAKE_BUILD_TYPE=Debug"}
)

// PathsConfig holds source and build locations, relative to the project root.
type PathsConfig struct {
	SourceRoot string   `yaml:"source_root,omitempty"`
	Sources    []string `yaml:"sources,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`
	BuildDir   string   `yaml:"build_dir,omitempty"`
}

// ToolsConfig holds external tool settings.
type ToolsConfig struct {
	// Timeout is the per-invocation limit in seconds.
	Timeout        int      `yaml:"timeout,omitempty"`
	ClangFormat    []string `yaml:"clang_format,omitempty"`
	TidyCommand    string   `yaml:"tidy_command,omitempty"`
	FormatParallel int      `yaml:"format_parallel,omitempty"`
}

// CoverageConfig holds coverage artifact locations, relative to the build dir.
type CoverageConfig struct {
	TestBinary string   `yaml:"test_binary,omitempty"`
	HTMLReport string   `yaml:"html_report,omitempty"`
	ProfData   string   `yaml:"profdata,omitempty"`
	CMakeArgs  []string `yaml:"cmake_args,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .conform.yaml.
type ProjectConfig struct {
	Name     string                    `yaml:"name,omitempty"`
	Paths    PathsConfig               `yaml:"paths,omitempty"`
	Checks   map[string]map[string]any `yaml:"checks,omitempty"`
	Tools    ToolsConfig               `yaml:"tools,omitempty"`
	Coverage CoverageConfig            `yaml:"coverage,omitempty"`

	// Root is the directory holding the config file, or the start
	// directory when none was found.
	Root string `yaml:"-"`
	// File is the path of the loaded config file, empty for defaults.
	File string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Name: DefaultName,
		Paths: PathsConfig{
			SourceRoot: DefaultSourceRoot,
			Sources:    clone(defaultSources),
			Extensions: clone(defaultExtensions),
			BuildDir:   DefaultBuildDir,
		},
		Checks: map[string]map[string]any{},
		Tools: ToolsConfig{
			Timeout:        DefaultToolTimeout,
			ClangFormat:    clone(defaultClangFormat),
			TidyCommand:    DefaultTidyCommand,
			FormatParallel: DefaultFormatParallel,
		},
		Coverage: CoverageConfig{
			TestBinary: DefaultTestBinary,
			HTMLReport: DefaultHTMLReport,
			ProfData:   DefaultProfData,
			CMakeArgs:  clone(defaultCMakeArgs),
		},
	}
}

// Load finds .conform.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults rooted at startDir with a nil
// error. Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", startDir, err)
	}

	path, data, err := findConfigFile(absDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := New()
			cfg.Root = absDir
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return parse(path, data)
}

// LoadFile loads an explicit config file. Unlike Load, a missing file is an error.
func LoadFile(path string) (*ProjectConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return parse(abs, data)
}

func parse(path string, data []byte) (*ProjectConfig, error) {
	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid %s:\n  %s", path, strings.Join(errs, "\n  "))
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := New()
	mergeConfig(cfg, &fileCfg)
	cfg.Root = filepath.Dir(path)
	cfg.File = path
	return cfg, nil
}

// findConfigFile walks up from dir looking for FileName. Returns
// os.ErrNotExist if no config file is found. Propagates real I/O errors
// (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) (string, []byte, error) {
	for i := 0; i < maxParentWalk; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Name != "" {
		dst.Name = src.Name
	}

	// Paths
	if src.Paths.SourceRoot != "" {
		dst.Paths.SourceRoot = src.Paths.SourceRoot
	}
	if len(src.Paths.Sources) > 0 {
		dst.Paths.Sources = src.Paths.Sources
	}
	if len(src.Paths.Extensions) > 0 {
		dst.Paths.Extensions = src.Paths.Extensions
	}
	if src.Paths.BuildDir != "" {
		dst.Paths.BuildDir = src.Paths.BuildDir
	}

	// Checks: a listed check replaces the defaults for that check only.
	for name, params := range src.Checks {
		dst.Checks[name] = params
	}

	// Tools
	if src.Tools.Timeout != 0 {
		dst.Tools.Timeout = src.Tools.Timeout
	}
	if len(src.Tools.ClangFormat) > 0 {
		dst.Tools.ClangFormat = src.Tools.ClangFormat
	}
	if src.Tools.TidyCommand != "" {
		dst.Tools.TidyCommand = src.Tools.TidyCommand
	}
	if src.Tools.FormatParallel != 0 {
		dst.Tools.FormatParallel = src.Tools.FormatParallel
	}

	// Coverage
	if src.Coverage.TestBinary != "" {
		dst.Coverage.TestBinary = src.Coverage.TestBinary
	}
	if src.Coverage.HTMLReport != "" {
		dst.Coverage.HTMLReport = src.Coverage.HTMLReport
	}
	if src.Coverage.ProfData != "" {
		dst.Coverage.ProfData = src.Coverage.ProfData
	}
	if src.Coverage.CMakeArgs != nil {
		dst.Coverage.CMakeArgs = src.Coverage.CMakeArgs
	}
}

// CheckParams returns the configured parameters for a check, or nil.
func (c *ProjectConfig) CheckParams(name string) map[string]any {
	return c.Checks[name]
}

// ToolTimeout returns the per-invocation tool timeout.
func (c *ProjectConfig) ToolTimeout() time.Duration {
	return time.Duration(c.Tools.Timeout) * time.Second
}

// BuildPath returns the absolute build directory.
func (c *ProjectConfig) BuildPath() string {
	return utils.ResolvePath(c.Paths.BuildDir, c.Root)
}

// SourcePaths returns the absolute source directories.
func (c *ProjectConfig) SourcePaths() []string {
	return utils.ResolvePaths(c.Paths.Sources, c.Root)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

const fileHeader = "# conform project configuration\n# Schema: schemas/config.schema.json\n"

// Write serializes c to path. It refuses to overwrite an existing file
// unless force is set.
func (c *ProjectConfig) Write(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	data = append([]byte(fileHeader), data...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
