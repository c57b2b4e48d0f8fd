package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conductor-ci/conductor/types"
)

func TestJSONRoundTrip(t *testing.T) {
	suite := buildReportSuite(t)
	outputPath := filepath.Join(t.TempDir(), "test_results.json")

	require.NoError(t, NewJSONReporter(Config{}).Generate(suite, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var restored types.SuiteResult
	require.NoError(t, json.Unmarshal(content, &restored))

	assert.Equal(t, suite.SuiteName, restored.SuiteName)
	assert.Equal(t, suite.RunID, restored.RunID)
	assert.Equal(t, suite.TotalTests(), restored.TotalTests())
	assert.Equal(t, suite.PassedTests(), restored.PassedTests())
	assert.Equal(t, suite.FailedTests(), restored.FailedTests())

	require.Len(t, restored.Results, 2)
	assert.Equal(t, "TestBlendMode", restored.Results[1].TestName)
	assert.Equal(t, types.TestStatusFail, restored.Results[1].Status)
	require.Len(t, restored.Results[1].Assertions, 1)
	assert.Equal(t, "expected 5 got 4", restored.Results[1].Assertions[0].Message)
}

func TestJSONPrettyPrint(t *testing.T) {
	suite := buildReportSuite(t)
	outputPath := filepath.Join(t.TempDir(), "test_results.json")

	require.NoError(t, NewJSONReporter(Config{PrettyPrint: true}).Generate(suite, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n  ")
	assert.True(t, strings.HasSuffix(string(content), "\n"))
}

func TestJSONDurationsInSeconds(t *testing.T) {
	suite := buildReportSuite(t)
	outputPath := filepath.Join(t.TempDir(), "test_results.json")

	require.NoError(t, NewJSONReporter(Config{}).Generate(suite, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(content, &payload))
	_, ok := payload["duration_seconds"].(float64)
	assert.True(t, ok, "duration_seconds should serialize as a number")
}

func TestJSONGenerateNilSuite(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "test_results.json")
	err := NewJSONReporter(Config{}).Generate(nil, outputPath)
	require.ErrorIs(t, err, ErrInvalidSuite)
}
