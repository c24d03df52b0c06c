package checks

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// DefaultSourceRoot is the path marker stripped before deriving a guard name.
const DefaultSourceRoot = "src/"

const pragmaOnce = "#pragma once"

// GuardName derives the include guard token expected for path.
//
// Everything up to and including the first occurrence of sourceRoot is
// dropped; when sourceRoot does not occur the whole path is used. Path
// separators and dots become underscores and the result is upper-cased:
//
//	GuardName("src/Layers/Layer.h", "src/") == "LAYERS_LAYER_H"
//
// The derivation only looks at the string, never at the filesystem.
func GuardName(path, sourceRoot string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	root := strings.ReplaceAll(sourceRoot, `\`, "/")
	if root != "" {
		if _, after, found := strings.Cut(p, root); found {
			p = after
		}
	}
	p = strings.NewReplacer("/", "_", ".", "_").Replace(p)
	return strings.ToUpper(p)
}

// HeaderGuardChecker verifies that a header is protected against double
// inclusion, either with #pragma once or with an #ifndef/#define pair
// using the guard derived from its path.
type HeaderGuardChecker struct {
	// SourceRoot overrides DefaultSourceRoot when non-empty.
	SourceRoot string
}

var _ Checker = (*HeaderGuardChecker)(nil)

func (*HeaderGuardChecker) Name() string  { return "header-guards" }
func (*HeaderGuardChecker) Issue() string { return "header guard" }

// ExpectedGuard returns the guard token the checker requires for path.
func (c *HeaderGuardChecker) ExpectedGuard(path string) string {
	root := c.SourceRoot
	if root == "" {
		root = DefaultSourceRoot
	}
	return GuardName(path, root)
}

func (c *HeaderGuardChecker) Check(f File) (*CheckResult, error) {
	if bytes.Contains(f.Content, []byte(pragmaOnce)) {
		return pass(f.Path), nil
	}

	guard := c.ExpectedGuard(f.Path)
	if guard != "" {
		// The guard token has to end at an identifier boundary so that
		// FOO_H_EXTRA does not count as FOO_H.
		quoted := regexp.QuoteMeta(guard)
		ifndef, err := regexp.Compile(`#ifndef\s+` + quoted + `(?:[^A-Za-z0-9_]|$)`)
		if err != nil {
			return nil, fmt.Errorf("compiling guard pattern for %s: %w", f.Path, err)
		}
		define, err := regexp.Compile(`#define\s+` + quoted + `(?:[^A-Za-z0-9_]|$)`)
		if err != nil {
			return nil, fmt.Errorf("compiling guard pattern for %s: %w", f.Path, err)
		}
		if ifndef.Match(f.Content) && define.Match(f.Content) {
			return pass(f.Path), nil
		}
	}

	return &CheckResult{
		Path:        f.Path,
		Passed:      false,
		Diagnostics: []string{fmt.Sprintf("Missing proper header guard (expected: %s or %s)", guard, pragmaOnce)},
	}, nil
}
