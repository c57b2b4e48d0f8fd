// Package reporting renders a completed suite result into persisted
// artifacts: JUnit XML, JSON and HTML files plus a console summary table.
// Reporters never mutate the suite and their output is byte-for-byte
// deterministic for an unchanged suite.
package reporting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/conductor-ci/conductor/types"
)

// Format identifiers accepted by --report.
const (
	FormatJUnit = "junit"
	FormatJSON  = "json"
	FormatHTML  = "html"
)

// ErrInvalidSuite is returned when a reporter receives a nil suite.
var ErrInvalidSuite = errors.New("suite result is required")

// Config carries the enumerated reporter options. Opaque test metadata is
// the only open-ended data that flows through reporters.
type Config struct {
	IncludeMetadata bool
	PrettyPrint     bool
}

// Reporter renders a suite result to one artifact format.
type Reporter interface {
	// Generate writes the artifact for the suite at outputPath. On failure
	// a sidecar error log is written next to the intended output.
	Generate(suite *types.SuiteResult, outputPath string) error
	Format() string
	DefaultFilename() string
	FileExtension() string
}

// Formats returns the supported format identifiers.
func Formats() []string {
	return []string{FormatJUnit, FormatJSON, FormatHTML}
}

// ForFormats builds one reporter per requested format identifier.
func ForFormats(formats []string, cfg Config) ([]Reporter, error) {
	reporters := make([]Reporter, 0, len(formats))
	for _, format := range formats {
		switch strings.TrimSpace(format) {
		case FormatJUnit:
			reporters = append(reporters, NewJUnitReporter(cfg))
		case FormatJSON:
			reporters = append(reporters, NewJSONReporter(cfg))
		case FormatHTML:
			reporter, err := NewHTMLReporter(cfg)
			if err != nil {
				return nil, err
			}
			reporters = append(reporters, reporter)
		default:
			return nil, fmt.Errorf("unknown report format %q (supported: %s)", format, strings.Join(Formats(), ", "))
		}
	}
	return reporters, nil
}

// writeArtifact validates the target, writes the rendered content and, if
// anything fails, still attempts a sidecar error log next to the intended
// output so the failure is never silently dropped.
func writeArtifact(outputPath string, content []byte, renderErr error) error {
	if err := ensureOutputDir(outputPath); err != nil {
		writeSidecar(outputPath, err)
		return err
	}
	if renderErr != nil {
		writeSidecar(outputPath, renderErr)
		return renderErr
	}
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		err = fmt.Errorf("writing report %s: %w", outputPath, err)
		writeSidecar(outputPath, err)
		return err
	}
	return nil
}

func ensureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report directory %s: %w", dir, err)
	}
	return nil
}

// writeSidecar records a report-generation failure in an error log beside
// the intended artifact. Best effort: a sidecar write failure is not
// recoverable and is swallowed.
func writeSidecar(outputPath string, genErr error) {
	sidecar := outputPath + ".error.log"
	content := fmt.Sprintf("report generation failed at %s\npath: %s\nerror: %v\n",
		time.Now().UTC().Format(time.RFC3339), outputPath, genErr)
	_ = os.WriteFile(sidecar, []byte(content), 0644)
}

// sanitize strips ANSI escape sequences from captured test text before it is
// embedded in a structured format.
func sanitize(s string) string {
	return stripansi.Strip(s)
}

// categoryOf normalizes an empty category to the default.
func categoryOf(r *types.TestResult) string {
	if r.Category == "" {
		return types.DefaultCategory
	}
	return r.Category
}

// formatSeconds renders a duration as fractional seconds with millisecond
// precision, the representation shared by the JUnit and HTML artifacts.
func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
