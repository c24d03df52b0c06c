// Package wizard collects .conform.yaml settings interactively for
// `conform init -i`.
package wizard

import (
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/visioncraft/conform/internal/projectconfig"
)

// Answers holds all fields collected during the interactive wizard.
type Answers struct {
	Name           string
	SourceRoot     string
	Sources        []string
	BuildDir       string
	FormatParallel int
}

// DefaultAnswers pre-populates the form from cfg.
func DefaultAnswers(cfg *projectconfig.ProjectConfig) Answers {
	return Answers{
		Name:           cfg.Name,
		SourceRoot:     cfg.Paths.SourceRoot,
		Sources:        append([]string(nil), cfg.Paths.Sources...),
		BuildDir:       cfg.Paths.BuildDir,
		FormatParallel: cfg.Tools.FormatParallel,
	}
}

// RunInitWizard runs an interactive huh form seeded with defaults.
func RunInitWizard(in io.Reader, out io.Writer, defaults Answers) (*Answers, error) {
	var (
		name        = defaults.Name
		sourceRoot  = defaults.SourceRoot
		sourcesRaw  = strings.Join(defaults.Sources, ", ")
		buildDir    = defaults.BuildDir
		parallelRaw = strconv.Itoa(max(defaults.FormatParallel, 1))
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Description("Shown in the coverage report banner").
				Value(&name).
				Validate(required("project name")),
			huh.NewInput().
				Title("Source root").
				Description("Path prefix stripped before deriving header guard names").
				Placeholder("src/").
				Value(&sourceRoot).
				Validate(ValidateSourceRoot),
			huh.NewInput().
				Title("Source directories").
				Description("Comma-separated directories scanned by --all and quality").
				Placeholder("src, tests").
				Value(&sourcesRaw).
				Validate(func(s string) error {
					if len(splitAndTrim(s)) == 0 {
						return fmt.Errorf("at least one source directory is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Build directory").
				Value(&buildDir).
				Validate(required("build directory")),
			huh.NewInput().
				Title("clang-format parallelism").
				Description("Number of files formatted concurrently").
				Value(&parallelRaw).
				Validate(func(s string) error {
					_, err := parseParallel(s)
					return err
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	parallel, err := parseParallel(parallelRaw)
	if err != nil {
		return nil, err
	}
	return &Answers{
		Name:           strings.TrimSpace(name),
		SourceRoot:     strings.TrimSpace(sourceRoot),
		Sources:        splitAndTrim(sourcesRaw),
		BuildDir:       strings.TrimSpace(buildDir),
		FormatParallel: parallel,
	}, nil
}

// Apply copies the answers onto cfg.
func (a *Answers) Apply(cfg *projectconfig.ProjectConfig) {
	cfg.Name = a.Name
	cfg.Paths.SourceRoot = a.SourceRoot
	cfg.Paths.Sources = a.Sources
	cfg.Paths.BuildDir = a.BuildDir
	cfg.Tools.FormatParallel = a.FormatParallel
	if a.BuildDir != projectconfig.DefaultBuildDir {
		cfg.Tools.TidyCommand = "cmake --build " + a.BuildDir + " --target tidy-all"
	}
}

// ValidateSourceRoot requires a relative, slash-terminated prefix.
func ValidateSourceRoot(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return fmt.Errorf("source root is required")
	case path.IsAbs(s):
		return fmt.Errorf("source root must be relative")
	case !strings.HasSuffix(s, "/"):
		return fmt.Errorf("source root must end with '/'")
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func parseParallel(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("parallelism must be a positive integer")
	}
	return n, nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
