package checks

import "log/slog"

// NamespaceChecker is meant to verify that every namespace closing brace
// carries a "// namespace Name" comment.
//
// It is not implemented: matching braces to namespaces needs a C++ parser,
// so every file passes. The checker stays registered so hooks and CI
// configuration that reference it keep working.
type NamespaceChecker struct{}

var _ Checker = (*NamespaceChecker)(nil)

func (*NamespaceChecker) Name() string  { return "namespaces" }
func (*NamespaceChecker) Issue() string { return "namespace format" }

// Implemented reports whether the rule does anything. Always false.
func (*NamespaceChecker) Implemented() bool { return false }

func (*NamespaceChecker) Check(f File) (*CheckResult, error) {
	slog.Debug("namespace check is not implemented, passing", "path", f.Path)
	return pass(f.Path), nil
}
