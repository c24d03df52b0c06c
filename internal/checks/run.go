package checks

import (
	"errors"
	"log/slog"
	"os"
	"unicode/utf8"
)

// CheckRun is the ordered set of results produced by one checker over a
// list of files.
type CheckRun struct {
	// Check is the rule name, e.g. "header-guards".
	Check string
	// Issue is the summary label of the rule.
	Issue string
	// Results holds one entry per input file, in input order.
	Results []*CheckResult
}

// Passed reports whether every file passed. A run over no files passes.
func (r *CheckRun) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns the failing results in input order.
func (r *CheckRun) Failed() []*CheckResult {
	var failed []*CheckResult
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// ReadFunc loads a file's content. os.ReadFile is used when nil.
type ReadFunc func(path string) ([]byte, error)

// RunOptions configures Run.
type RunOptions struct {
	ReadFile ReadFunc
}

// Run applies checker to each path in order. Files that cannot be read, and
// checker errors, become failed results carrying the error text; they never
// stop the remaining files from being checked.
func Run(checker Checker, paths []string, opts *RunOptions) *CheckRun {
	read := os.ReadFile
	if opts != nil && opts.ReadFile != nil {
		read = opts.ReadFile
	}

	run := &CheckRun{
		Check:   checker.Name(),
		Issue:   checker.Issue(),
		Results: make([]*CheckResult, 0, len(paths)),
	}
	for _, p := range paths {
		run.Results = append(run.Results, checkOne(checker, p, read))
	}

	slog.Debug("check run finished", "check", run.Check, "files", len(paths), "failed", len(run.Failed()))
	return run
}

func checkOne(checker Checker, path string, read ReadFunc) *CheckResult {
	content, err := read(path)
	if err == nil && !utf8.Valid(content) {
		err = errInvalidUTF8
	}
	if err != nil {
		return faulted(path, err)
	}

	res, err := checker.Check(File{Path: path, Content: content})
	if err != nil {
		return faulted(path, err)
	}
	return res
}

func faulted(path string, err error) *CheckResult {
	return &CheckResult{
		Path:        path,
		Passed:      false,
		Diagnostics: []string{err.Error()},
		Fault:       err,
	}
}
