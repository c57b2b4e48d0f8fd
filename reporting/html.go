package reporting

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/conductor-ci/conductor/types"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// htmlReportData is the view model handed to the report template. Every
// field is derived from the suite's own recorded data so rendering twice
// produces identical bytes.
type htmlReportData struct {
	SuiteName      string
	RunID          string
	Timestamp      string
	Duration       string
	Total          int
	Passed         int
	Failed         int
	Errored        int
	Skipped        int
	SuccessRate    string
	Categories     []htmlCategory
	FailureDetails []htmlTestRow
}

type htmlCategory struct {
	Name  string
	Tests []htmlTestRow
}

type htmlTestRow struct {
	Name        string
	StatusText  string
	StatusClass string
	Duration    string
	Message     string
	StackTrace  string
}

// HTMLReporter renders a suite as a self-contained HTML page.
type HTMLReporter struct {
	cfg  Config
	tmpl *template.Template
}

// NewHTMLReporter creates an HTML reporter from the embedded template.
func NewHTMLReporter(cfg Config) (*HTMLReporter, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return &HTMLReporter{cfg: cfg, tmpl: tmpl}, nil
}

// Format implements Reporter.
func (h *HTMLReporter) Format() string { return FormatHTML }

// DefaultFilename implements Reporter.
func (h *HTMLReporter) DefaultFilename() string { return "test_results.html" }

// FileExtension implements Reporter.
func (h *HTMLReporter) FileExtension() string { return ".html" }

// Generate implements Reporter.
func (h *HTMLReporter) Generate(suite *types.SuiteResult, outputPath string) error {
	if suite == nil {
		writeSidecar(outputPath, ErrInvalidSuite)
		return ErrInvalidSuite
	}

	var buf bytes.Buffer
	err := h.tmpl.Execute(&buf, h.buildData(suite))
	return writeArtifact(outputPath, buf.Bytes(), err)
}

func (h *HTMLReporter) buildData(suite *types.SuiteResult) htmlReportData {
	data := htmlReportData{
		SuiteName:   suite.SuiteName,
		RunID:       suite.RunID,
		Timestamp:   suite.Start.UTC().Format(time.RFC3339),
		Duration:    formatSeconds(suite.Duration),
		Total:       suite.TotalTests(),
		Passed:      suite.PassedTests(),
		Failed:      suite.FailedTests(),
		Errored:     suite.ErroredTests(),
		Skipped:     suite.SkippedTests(),
		SuccessRate: fmt.Sprintf("%.1f", suite.SuccessRate()),
	}

	categories, grouped := suite.ResultsByCategory()
	for _, category := range categories {
		cat := htmlCategory{Name: category}
		for _, r := range grouped[category] {
			row := h.buildRow(r)
			cat.Tests = append(cat.Tests, row)
			if r.Status == types.TestStatusFail || r.Status == types.TestStatusError {
				data.FailureDetails = append(data.FailureDetails, row)
			}
		}
		data.Categories = append(data.Categories, cat)
	}
	return data
}

func (h *HTMLReporter) buildRow(r *types.TestResult) htmlTestRow {
	display := statusDisplay(r.Status)
	return htmlTestRow{
		Name:        r.FullName(),
		StatusText:  display.Text,
		StatusClass: display.Class,
		Duration:    formatSeconds(r.Duration),
		Message:     sanitize(r.ErrorMessage),
		StackTrace:  sanitize(r.StackTrace),
	}
}

// statusDisplay maps a status onto its display text and CSS class.
type display struct {
	Text  string
	Class string
}

func statusDisplay(status types.TestStatus) display {
	switch status {
	case types.TestStatusPass:
		return display{Text: "PASS", Class: "pass"}
	case types.TestStatusFail:
		return display{Text: "FAIL", Class: "fail"}
	case types.TestStatusError:
		return display{Text: "ERROR", Class: "error"}
	case types.TestStatusSkip:
		return display{Text: "SKIP", Class: "skip"}
	default:
		return display{Text: "UNKNOWN", Class: "unknown"}
	}
}
