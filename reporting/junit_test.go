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

	"github.com/conductor-ci/conductor/types"
)

func buildReportSuite(t *testing.T) *types.SuiteResult {
	t.Helper()
	suite := types.NewSuiteResult("engine")
	suite.RunID = "run-1234"

	pass := types.NewTestResult("TestSpriteDraw", "SpriteBatchTest")
	pass.Category = "core"
	require.NoError(t, pass.MarkPassed())
	suite.AddResult(pass)

	fail := types.NewTestResult("TestBlendMode", "SpriteBatchTest")
	fail.Category = "core"
	require.NoError(t, fail.AddAssertion(types.AssertionRecord{
		Kind: "equals", Passed: false, Message: "expected 5 got 4",
	}))
	require.NoError(t, fail.MarkFailed("expected 5 got 4", ""))
	suite.AddResult(fail)

	require.NoError(t, suite.Complete())
	return suite
}

func TestJUnitOneSuitePerCategory(t *testing.T) {
	suite := buildReportSuite(t)
	reporter := NewJUnitReporter(Config{})

	content, err := reporter.render(suite)
	require.NoError(t, err)
	body := string(content)

	assert.Equal(t, 1, strings.Count(body, "<testsuite "))
	assert.Contains(t, body, `name="engine.core"`)
	assert.Contains(t, body, `tests="2"`)
	assert.Contains(t, body, `failures="1"`)
	assert.Contains(t, body, `type="AssertionError"`)
	assert.Contains(t, body, `classname="SpriteBatchTest"`)
}

func TestJUnitWellFormed(t *testing.T) {
	suite := buildReportSuite(t)

	skip := types.NewTestResult("TestHeadless", "WindowTest")
	skip.Category = "platform"
	require.NoError(t, skip.MarkSkipped("no display"))
	suite.Results = append(suite.Results, skip)

	errored := types.NewTestResult("TestGPUUpload", "TextureTest")
	errored.Category = "platform"
	require.NoError(t, errored.MarkError("panic: nil texture", "goroutine 1 [running]:"))
	suite.Results = append(suite.Results, errored)

	content, err := NewJUnitReporter(Config{IncludeMetadata: true}).render(suite)
	require.NoError(t, err)

	var doc junitTestSuites
	require.NoError(t, xml.Unmarshal(content, &doc))
	require.Len(t, doc.Suites, 2)

	// Categories appear in first-seen order.
	assert.Equal(t, "engine.core", doc.Suites[0].Name)
	assert.Equal(t, "engine.platform", doc.Suites[1].Name)
	assert.Equal(t, 1, doc.Suites[1].Skipped)
	assert.Equal(t, 1, doc.Suites[1].Errors)

	require.Len(t, doc.Suites[0].Properties, 1)
	assert.Equal(t, "run_id", doc.Suites[0].Properties[0].Name)
	assert.Equal(t, "run-1234", doc.Suites[0].Properties[0].Value)

	_, err = time.Parse(time.RFC3339, doc.Suites[0].Timestamp)
	assert.NoError(t, err)
}

func TestJUnitEscapesSpecialCharacters(t *testing.T) {
	suite := types.NewSuiteResult("engine")
	r := types.NewTestResult("TestShader", "ShaderCompileTest")
	require.NoError(t, r.MarkFailed(`expected "<diffuse>" got '&broken'`, ""))
	suite.AddResult(r)
	require.NoError(t, suite.Complete())

	content, err := NewJUnitReporter(Config{}).render(suite)
	require.NoError(t, err)

	var doc junitTestSuites
	require.NoError(t, xml.Unmarshal(content, &doc))
	require.Len(t, doc.Suites, 1)
	require.Len(t, doc.Suites[0].TestCases, 1)
	assert.Equal(t, `expected "<diffuse>" got '&broken'`, doc.Suites[0].TestCases[0].Failure.Message)
}

func TestJUnitStripsControlSequences(t *testing.T) {
	suite := types.NewSuiteResult("engine")
	r := types.NewTestResult("TestColors", "TerminalTest")
	require.NoError(t, r.MarkFailed("\x1b[31mexpected red\x1b[0m", ""))
	suite.AddResult(r)
	require.NoError(t, suite.Complete())

	content, err := NewJUnitReporter(Config{}).render(suite)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "\x1b")
	assert.Contains(t, string(content), "expected red")
}

func TestJUnitDeterministicOutput(t *testing.T) {
	suite := buildReportSuite(t)
	reporter := NewJUnitReporter(Config{IncludeMetadata: true})

	first, err := reporter.render(suite)
	require.NoError(t, err)
	second, err := reporter.render(suite)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestJUnitGenerateWritesFile(t *testing.T) {
	suite := buildReportSuite(t)
	outputPath := filepath.Join(t.TempDir(), "reports", "junit_results.xml")

	require.NoError(t, NewJUnitReporter(Config{}).Generate(suite, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), xml.Header))
}

func TestJUnitGenerateNilSuite(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "junit_results.xml")
	err := NewJUnitReporter(Config{}).Generate(nil, outputPath)
	require.ErrorIs(t, err, ErrInvalidSuite)

	sidecar, readErr := os.ReadFile(outputPath + ".error.log")
	require.NoError(t, readErr)
	assert.Contains(t, string(sidecar), "suite result is required")
}
