package reporting

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/conductor-ci/conductor/types"
)

// JUnit XML document model. One <testsuite> element per distinct category,
// in first-seen order, so CI systems group results the way the suite ran.

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       string          `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []junitProperty `xml:"properties>property,omitempty"`
	TestCases  []junitTestCase `xml:"testcase"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Error     *junitFailure `xml:"error,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

// JUnitReporter renders a suite as JUnit-style XML.
type JUnitReporter struct {
	cfg Config
}

// NewJUnitReporter creates a JUnit XML reporter.
func NewJUnitReporter(cfg Config) *JUnitReporter {
	return &JUnitReporter{cfg: cfg}
}

// Format implements Reporter.
func (j *JUnitReporter) Format() string { return FormatJUnit }

// DefaultFilename implements Reporter.
func (j *JUnitReporter) DefaultFilename() string { return "junit_results.xml" }

// FileExtension implements Reporter.
func (j *JUnitReporter) FileExtension() string { return ".xml" }

// Generate implements Reporter.
func (j *JUnitReporter) Generate(suite *types.SuiteResult, outputPath string) error {
	if suite == nil {
		writeSidecar(outputPath, ErrInvalidSuite)
		return ErrInvalidSuite
	}
	content, err := j.render(suite)
	return writeArtifact(outputPath, content, err)
}

func (j *JUnitReporter) render(suite *types.SuiteResult) ([]byte, error) {
	categories, grouped := suite.ResultsByCategory()

	doc := junitTestSuites{Suites: make([]junitTestSuite, 0, len(categories))}
	for _, category := range categories {
		results := grouped[category]
		element := junitTestSuite{
			Name:      suite.SuiteName + "." + category,
			Tests:     len(results),
			Time:      formatSeconds(categoryDuration(results)),
			Timestamp: suite.Start.UTC().Format(time.RFC3339),
			TestCases: make([]junitTestCase, 0, len(results)),
		}
		if j.cfg.IncludeMetadata && suite.RunID != "" {
			element.Properties = []junitProperty{{Name: "run_id", Value: suite.RunID}}
		}

		for _, r := range results {
			tc := junitTestCase{
				Name:      r.FullName(),
				ClassName: r.TestClass,
				Time:      formatSeconds(r.Duration),
			}
			switch r.Status {
			case types.TestStatusFail:
				element.Failures++
				tc.Failure = &junitFailure{
					Message:  sanitize(r.ErrorMessage),
					Type:     "AssertionError",
					Contents: sanitize(r.StackTrace),
				}
			case types.TestStatusError:
				element.Errors++
				tc.Error = &junitFailure{
					Message:  sanitize(r.ErrorMessage),
					Type:     "TestError",
					Contents: sanitize(r.StackTrace),
				}
			case types.TestStatusSkip:
				element.Skipped++
				tc.Skipped = &junitSkipped{Message: sanitize(r.ErrorMessage)}
			}
			element.TestCases = append(element.TestCases, tc)
		}
		doc.Suites = append(doc.Suites, element)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	var out strings.Builder
	out.WriteString(xml.Header)
	out.Write(body)
	out.WriteString("\n")
	return []byte(out.String()), nil
}

func categoryDuration(results []*types.TestResult) time.Duration {
	var total time.Duration
	for _, r := range results {
		total += r.Duration
	}
	return total
}
