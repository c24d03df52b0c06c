package reporting

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visioncraft/conform/internal/checks"
)

func TestConvertToJUnit(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	suites := ConvertToJUnit([]*checks.CheckRun{sampleRun()}, now)

	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	require.Len(t, suites.TestSuites, 1)

	suite := suites.TestSuites[0]
	assert.Equal(t, "todos", suite.Name)
	assert.Equal(t, "2026-03-01T10:00:00Z", suite.Timestamp)
	require.Len(t, suite.TestCases, 3)

	assert.Nil(t, suite.TestCases[0].Failure)
	assert.Nil(t, suite.TestCases[0].Error)

	fail := suite.TestCases[1].Failure
	require.NotNil(t, fail)
	assert.Equal(t, "StyleViolation", fail.Type)
	assert.Equal(t, "src/bad.cpp: 2 TODO/FIXME format issue(s)", fail.Message)
	assert.Contains(t, fail.Body, "Line 9: //FIXME later")

	errCase := suite.TestCases[2].Error
	require.NotNil(t, errCase)
	assert.Equal(t, "ReadError", errCase.Type)
}

func TestWriteJUnitXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conform.xml")
	require.NoError(t, WriteJUnitXML([]*checks.CheckRun{sampleRun()}, path, time.Now()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xml.Header))

	var parsed JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, 3, parsed.Tests)
	require.Len(t, parsed.TestSuites, 1)
	assert.Equal(t, "todos", parsed.TestSuites[0].Name)
}
