// Package checks provides the Checker interface and the style predicates
// applied to C++ sources: header guards, TODO/FIXME annotation format and
// namespace closing comments.
package checks

// File is a single input handed to a Checker.
type File struct {
	// Path is the path as given on the command line. Checkers must not touch
	// the filesystem through it.
	Path string
	// Content is the full file text.
	Content []byte
}

// CheckResult holds the outcome of running one check against one file.
type CheckResult struct {
	// Path is the file the result belongs to.
	Path string
	// Passed indicates whether the file satisfies the rule.
	Passed bool
	// Hint is an optional rule reminder printed above the diagnostics.
	Hint string
	// Diagnostics explains the failure. Empty when Passed is true.
	Diagnostics []string
	// Fault is set when the file could not be read. Diagnostics then holds
	// the fault's message as its only entry.
	Fault error
}

// Checker applies a single style rule to a file.
type Checker interface {
	// Name is the stable rule identifier used on the command line and in config.
	Name() string
	// Issue is the short label used in the run summary, e.g. "header guard".
	Issue() string
	Check(File) (*CheckResult, error)
}

func pass(path string) *CheckResult {
	return &CheckResult{Path: path, Passed: true}
}
