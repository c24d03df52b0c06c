package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePaths(t *testing.T) {
	base := filepath.FromSlash("/project")
	abs := filepath.FromSlash("/opt/include")

	tests := []struct {
		name     string
		paths    []string
		baseDir  string
		expected []string
	}{
		{name: "nil list", paths: nil, baseDir: base, expected: nil},
		{name: "empty list", paths: []string{}, baseDir: base, expected: nil},
		{name: "absolute paths unchanged", paths: []string{abs}, baseDir: base, expected: []string{abs}},
		{
			name:     "relative paths joined",
			paths:    []string{"src", "tests/unit"},
			baseDir:  base,
			expected: []string{filepath.Join(base, "src"), filepath.Join(base, "tests", "unit")},
		},
		{name: "empty base leaves paths alone", paths: []string{"src"}, baseDir: "", expected: []string{"src"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolvePaths(tt.paths, tt.baseDir))
		})
	}
}

func TestRelativeTo(t *testing.T) {
	base := filepath.FromSlash("/project")

	assert.Equal(t, "src/Layers/Layer.h", RelativeTo(filepath.Join(base, "src", "Layers", "Layer.h"), base))
	assert.Equal(t, "..config", RelativeTo(filepath.Join(base, "..config"), base))

	outside := filepath.FromSlash("/elsewhere/a.h")
	assert.Equal(t, outside, RelativeTo(outside, base))
	assert.Equal(t, "a.h", RelativeTo("a.h", ""))
}
