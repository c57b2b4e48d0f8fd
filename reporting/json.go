package reporting

import (
	"encoding/json"

	"github.com/conductor-ci/conductor/types"
)

// JSONReporter renders the full suite result, including per-assertion data
// and opaque metadata, as a machine-readable JSON artifact.
type JSONReporter struct {
	cfg Config
}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter(cfg Config) *JSONReporter {
	return &JSONReporter{cfg: cfg}
}

// Format implements Reporter.
func (j *JSONReporter) Format() string { return FormatJSON }

// DefaultFilename implements Reporter.
func (j *JSONReporter) DefaultFilename() string { return "test_results.json" }

// FileExtension implements Reporter.
func (j *JSONReporter) FileExtension() string { return ".json" }

// Generate implements Reporter.
func (j *JSONReporter) Generate(suite *types.SuiteResult, outputPath string) error {
	if suite == nil {
		writeSidecar(outputPath, ErrInvalidSuite)
		return ErrInvalidSuite
	}

	var content []byte
	var err error
	if j.cfg.PrettyPrint {
		content, err = json.MarshalIndent(suite, "", "  ")
	} else {
		content, err = json.Marshal(suite)
	}
	if err == nil {
		content = append(content, '\n')
	}
	return writeArtifact(outputPath, content, err)
}
