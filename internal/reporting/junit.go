package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/visioncraft/conform/internal/checks"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one check run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one checked file.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents a rule violation.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a file that could not be checked.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts check runs into JUnit suites, one suite per run.
func ConvertToJUnit(runs []*checks.CheckRun, now time.Time) *JUnitTestSuites {
	out := &JUnitTestSuites{}
	for _, run := range runs {
		suite := JUnitTestSuite{
			Name:      run.Check,
			Tests:     len(run.Results),
			Timestamp: now.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "issue", Value: run.Issue},
			},
		}
		for _, res := range run.Results {
			tc := JUnitTestCase{Name: res.Path, Classname: run.Check}
			switch {
			case res.Fault != nil:
				tc.Error = &JUnitError{Message: res.Fault.Error(), Type: "ReadError"}
				suite.Errors++
			case !res.Passed:
				tc.Failure = buildFailure(run, res)
				suite.Failures++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

func buildFailure(run *checks.CheckRun, res *checks.CheckResult) *JUnitFailure {
	var body strings.Builder
	if res.Hint != "" {
		body.WriteString(res.Hint + "\n")
	}
	for _, d := range res.Diagnostics {
		body.WriteString(d + "\n")
	}
	return &JUnitFailure{
		Message: fmt.Sprintf("%s: %d %s issue(s)", res.Path, len(res.Diagnostics), run.Issue),
		Type:    "StyleViolation",
		Body:    body.String(),
	}
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(runs []*checks.CheckRun, path string, now time.Time) error {
	suites := ConvertToJUnit(runs, now)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
