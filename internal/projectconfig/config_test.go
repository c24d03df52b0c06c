package projectconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	assertEqual(t, "Name", "Vision-Craft", cfg.Name)

	// Paths
	assertEqual(t, "Paths.SourceRoot", "src/", cfg.Paths.SourceRoot)
	assertSlice(t, "Paths.Sources", []string{"src", "tests"}, cfg.Paths.Sources)
	assertSlice(t, "Paths.Extensions", []string{".cpp", ".hpp", ".h"}, cfg.Paths.Extensions)
	assertEqual(t, "Paths.BuildDir", "build", cfg.Paths.BuildDir)

	// Tools
	assertEqualInt(t, "Tools.Timeout", 300, cfg.Tools.Timeout)
	assertSlice(t, "Tools.ClangFormat", []string{"clang-format", "C:/Program Files/LLVM/bin/clang-format.exe"}, cfg.Tools.ClangFormat)
	assertEqual(t, "Tools.TidyCommand", "cmake --build build --target tidy-all", cfg.Tools.TidyCommand)
	assertEqualInt(t, "Tools.FormatParallel", 1, cfg.Tools.FormatParallel)

	// Coverage
	assertEqual(t, "Coverage.TestBinary", "tests/TestVisionCraftNodes", cfg.Coverage.TestBinary)
	assertEqual(t, "Coverage.HTMLReport", "coverage/html/index.html", cfg.Coverage.HTMLReport)
	assertEqual(t, "Coverage.ProfData", "coverage/coverage.profdata", cfg.Coverage.ProfData)
	assertSlice(t, "Coverage.CMakeArgs", []string{"-DENABLE_COVERAGE=ON", "-DBUILD_TESTS=ON", "-DCMAKE_BUILD_TYPE=Debug"}, cfg.Coverage.CMakeArgs)

	if len(cfg.Checks) != 0 {
		t.Errorf("Checks should be empty by default, got %v", cfg.Checks)
	}
	if cfg.ToolTimeout() != 300*time.Second {
		t.Errorf("ToolTimeout = %s, want 5m0s", cfg.ToolTimeout())
	}
}

func TestNew_DefaultsAreNotShared(t *testing.T) {
	a := New()
	a.Paths.Sources[0] = "changed"
	b := New()
	assertEqual(t, "Paths.Sources[0]", "src", b.Paths.Sources[0])
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
name: Engine
paths:
  source_root: include/
  sources: [include, lib]
  extensions: [.hh, .cc]
  build_dir: out
checks:
  todos:
    markers: [TODO, FIXME, XXX]
tools:
  timeout: 60
  clang_format: [clang-format-17]
  tidy_command: make tidy
  format_parallel: 8
coverage:
  test_binary: tests/AllTests
  html_report: cov/index.html
  profdata: cov/all.profdata
  cmake_args: []
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	assertEqual(t, "Name", "Engine", cfg.Name)
	assertEqual(t, "Paths.SourceRoot", "include/", cfg.Paths.SourceRoot)
	assertSlice(t, "Paths.Sources", []string{"include", "lib"}, cfg.Paths.Sources)
	assertSlice(t, "Paths.Extensions", []string{".hh", ".cc"}, cfg.Paths.Extensions)
	assertEqual(t, "Paths.BuildDir", "out", cfg.Paths.BuildDir)
	assertEqualInt(t, "Tools.Timeout", 60, cfg.Tools.Timeout)
	assertSlice(t, "Tools.ClangFormat", []string{"clang-format-17"}, cfg.Tools.ClangFormat)
	assertEqual(t, "Tools.TidyCommand", "make tidy", cfg.Tools.TidyCommand)
	assertEqualInt(t, "Tools.FormatParallel", 8, cfg.Tools.FormatParallel)
	assertEqual(t, "Coverage.TestBinary", "tests/AllTests", cfg.Coverage.TestBinary)
	assertEqual(t, "Coverage.HTMLReport", "cov/index.html", cfg.Coverage.HTMLReport)
	assertEqual(t, "Coverage.ProfData", "cov/all.profdata", cfg.Coverage.ProfData)
	if len(cfg.Coverage.CMakeArgs) != 0 {
		t.Errorf("Coverage.CMakeArgs: explicit empty list should clear defaults, got %v", cfg.Coverage.CMakeArgs)
	}

	markers, ok := cfg.CheckParams("todos")["markers"].([]any)
	if !ok || len(markers) != 3 {
		t.Errorf("CheckParams(todos) markers = %v", cfg.CheckParams("todos"))
	}
	if cfg.CheckParams("header-guards") != nil {
		t.Error("CheckParams(header-guards) should be nil")
	}

	assertEqual(t, "Root", dir, cfg.Root)
	assertEqual(t, "File", filepath.Join(dir, FileName), cfg.File)
	assertEqual(t, "BuildPath", filepath.Join(dir, "out"), cfg.BuildPath())
	assertSlice(t, "SourcePaths", []string{filepath.Join(dir, "include"), filepath.Join(dir, "lib")}, cfg.SourcePaths())
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "paths:\n  build_dir: cmake-build\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEqual(t, "Paths.BuildDir", "cmake-build", cfg.Paths.BuildDir)
	assertEqual(t, "Paths.SourceRoot", "src/", cfg.Paths.SourceRoot)
	assertEqualInt(t, "Tools.Timeout", 300, cfg.Tools.Timeout)
}

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEqual(t, "Root", dir, cfg.Root)
	assertEqual(t, "File", "", cfg.File)
	assertEqual(t, "Paths.BuildDir", "build", cfg.Paths.BuildDir)
}

func TestLoad_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "name: Walked\n")
	nested := filepath.Join(root, "src", "Vision", "IO")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEqual(t, "Name", "Walked", cfg.Name)
	assertEqual(t, "Root", root, cfg.Root)
}

func TestLoad_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "tools:\n  timeout: 0\n")

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "/tools/timeout") {
		t.Errorf("error should point at /tools/timeout, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "ci.yaml", "name: CI\n")

	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	assertEqual(t, "Name", "CI", cfg.Name)
	assertEqual(t, "Root", dir, cfg.Root)

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile of a missing file should fail")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertSlice(t *testing.T, field string, want, got []string) {
	t.Helper()
	if strings.Join(got, "\x00") != strings.Join(want, "\x00") || len(got) != len(want) {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func TestWrite_LoadsBack(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, FileName)

	cfg := New()
	cfg.Name = "Written"
	cfg.Tools.FormatParallel = 4
	if err := cfg.Write(p, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEqual(t, "Name", "Written", got.Name)
	assertEqualInt(t, "Tools.FormatParallel", 4, got.Tools.FormatParallel)

	if err := cfg.Write(p, false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second Write without force: err = %v", err)
	}
	if err := cfg.Write(p, true); err != nil {
		t.Errorf("Write with force: %v", err)
	}
}
