package checks

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMarkers are the task annotation keywords checked by AnnotationChecker.
var DefaultMarkers = []string{"TODO", "FIXME"}

// AnnotationChecker verifies that every //TODO and //FIXME comment is written
// as "//TODO: text" or "//TODO(owner): text".
type AnnotationChecker struct {
	// Markers overrides DefaultMarkers when non-empty.
	Markers []string
}

var _ Checker = (*AnnotationChecker)(nil)

func (*AnnotationChecker) Name() string { return "todos" }

func (c *AnnotationChecker) Issue() string {
	return strings.Join(c.markers(), "/") + " format"
}

func (c *AnnotationChecker) markers() []string {
	if len(c.Markers) == 0 {
		return DefaultMarkers
	}
	return c.Markers
}

// Hint is printed above the offending lines.
func (c *AnnotationChecker) Hint() string {
	m := c.markers()
	return fmt.Sprintf("%s must be formatted as: // %s: description", strings.Join(m, "/"), m[0])
}

func (c *AnnotationChecker) patterns() (marker, valid *regexp.Regexp, err error) {
	quoted := make([]string, 0, len(c.markers()))
	for _, m := range c.markers() {
		quoted = append(quoted, regexp.QuoteMeta(m))
	}
	alt := strings.Join(quoted, "|")

	marker, err = regexp.Compile(`//(?:` + alt + `)`)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling marker pattern: %w", err)
	}
	valid, err = regexp.Compile(`//(?:` + alt + `)(?:\([^)]+\))?:\s+.+`)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling annotation pattern: %w", err)
	}
	return marker, valid, nil
}

func (c *AnnotationChecker) Check(f File) (*CheckResult, error) {
	marker, valid, err := c.patterns()
	if err != nil {
		return nil, err
	}

	var issues []string
	sc := bufio.NewScanner(bytes.NewReader(f.Content))
	sc.Buffer(make([]byte, 0, 64*1024), len(f.Content)+1)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), "\r")
		if marker.MatchString(line) && !valid.MatchString(line) {
			issues = append(issues, fmt.Sprintf("Line %d: %s", n, strings.TrimSpace(line)))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", f.Path, err)
	}

	if len(issues) == 0 {
		return pass(f.Path), nil
	}
	return &CheckResult{
		Path:        f.Path,
		Passed:      false,
		Hint:        c.Hint(),
		Diagnostics: issues,
	}, nil
}
