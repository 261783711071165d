// Package reporting renders finished runs for CI systems.
package reporting

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spboyer/lineagebench/internal/execution"
	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/orchestration"
	"github.com/spboyer/lineagebench/internal/validation"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one model of a run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one job.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure is a job whose answer never satisfied the schema.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError is a job that failed for any other reason.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a RunResult to JUnit XML, one suite per model.
func ConvertToJUnit(result *orchestration.RunResult) *JUnitTestSuites {
	var order []string
	byModel := map[string][]orchestration.JobOutcome{}
	for _, o := range result.Outcomes {
		if _, seen := byModel[o.Job.Model]; !seen {
			order = append(order, o.Job.Model)
		}
		byModel[o.Job.Model] = append(byModel[o.Job.Model], o)
	}

	out := &JUnitTestSuites{
		Time: result.FinishedAt.Sub(result.StartedAt).Seconds(),
	}
	for _, model := range order {
		suite := convertModel(result, model, byModel[model])
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

func convertModel(result *orchestration.RunResult, model string, outcomes []orchestration.JobOutcome) JUnitTestSuite {
	suite := JUnitTestSuite{
		Name:      model,
		Timestamp: result.StartedAt.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "run_id", Value: result.RunID},
			{Name: "model", Value: model},
		},
	}
	if s, ok := result.Summaries[model]; ok {
		suite.Properties = append(suite.Properties,
			JUnitProperty{Name: "samples", Value: fmt.Sprintf("%d", s.SampleCount)},
			JUnitProperty{Name: "mean_chars", Value: fmt.Sprintf("%.2f", s.MeanChars)},
			JUnitProperty{Name: "mean_duration_seconds", Value: fmt.Sprintf("%.3f", s.MeanDuration)},
			JUnitProperty{Name: "chars_per_second", Value: fmt.Sprintf("%.2f", s.CharsPerSecond)},
		)
	}

	for _, o := range outcomes {
		tc := convertOutcome(o)
		suite.Tests++
		suite.Time += tc.Time
		switch {
		case tc.Failure != nil:
			suite.Failures++
		case tc.Error != nil:
			suite.Errors++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	return suite
}

func convertOutcome(o orchestration.JobOutcome) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      fmt.Sprintf("%s/prompt%d/repeat%d", o.Job.TaskIDOrUnknown(), o.Job.VariantIndex+1, o.Job.Repeat),
		Classname: o.Job.Model,
		Time:      o.Duration.Seconds(),
	}
	if o.State != models.JobFailed {
		return tc
	}

	msg := "job failed"
	if o.Err != nil {
		msg = o.Err.Error()
	}
	var transportErr *execution.TransportError
	switch {
	case validation.IsAnswerError(o.Err):
		tc.Failure = &JUnitFailure{Message: msg, Type: "InvalidAnswer", Body: artifactNote(o)}
	case errors.As(o.Err, &transportErr):
		tc.Error = &JUnitError{Message: msg, Type: "TransportError", Body: artifactNote(o)}
	default:
		tc.Error = &JUnitError{Message: msg, Type: "ExecutionError", Body: artifactNote(o)}
	}
	return tc
}

func artifactNote(o orchestration.JobOutcome) string {
	if o.Path == "" {
		return ""
	}
	return "error record: " + o.Path
}

// WriteJUnitXML writes JUnit XML for result to path, creating parent directories.
func WriteJUnitXML(result *orchestration.RunResult, path string) error {
	suites := ConvertToJUnit(result)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating JUnit directory: %w", err)
	}
	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0o644)
}
