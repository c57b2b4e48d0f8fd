// Package assertions defines the evaluator boundary between the pipeline and
// engine-specific comparison logic. The pipeline consumes evaluators as a
// capability set; the built-in evaluator covers the generic kinds so the
// pipeline is exercisable without an engine attached.
package assertions

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/conductor-ci/conductor/types"
)

// Assertion kind identifiers understood by the built-in evaluator.
const (
	KindEquals    = "equals"
	KindNotEquals = "not_equals"
	KindTrue      = "true"
	KindFalse     = "false"
	KindContains  = "contains"
)

// Evaluator turns an (expected, actual) pair into an assertion record.
// External collaborators implement this for engine-specific comparisons.
type Evaluator interface {
	Evaluate(kind string, expected, actual any) types.AssertionRecord
}

// Builtin is the default evaluator. Unknown kinds evaluate as failed records
// so a misconfigured assertion can never silently pass.
type Builtin struct{}

// NewBuiltin returns the default evaluator.
func NewBuiltin() *Builtin {
	return &Builtin{}
}

// Evaluate implements Evaluator.
func (b *Builtin) Evaluate(kind string, expected, actual any) types.AssertionRecord {
	record := types.AssertionRecord{
		Kind:       kind,
		Expected:   expected,
		Actual:     actual,
		RecordedAt: time.Now(),
	}

	switch kind {
	case KindEquals:
		record.Passed = reflect.DeepEqual(expected, actual)
		if record.Passed {
			record.Message = fmt.Sprintf("equals: %v", actual)
		} else {
			record.Message = fmt.Sprintf("expected %v got %v", expected, actual)
		}
	case KindNotEquals:
		record.Passed = !reflect.DeepEqual(expected, actual)
		if record.Passed {
			record.Message = fmt.Sprintf("not equals: %v != %v", expected, actual)
		} else {
			record.Message = fmt.Sprintf("expected anything but %v", expected)
		}
	case KindTrue:
		record.Passed = actual == true
		record.Message = fmt.Sprintf("expected true got %v", actual)
	case KindFalse:
		record.Passed = actual == false
		record.Message = fmt.Sprintf("expected false got %v", actual)
	case KindContains:
		haystack, okH := actual.(string)
		needle, okN := expected.(string)
		record.Passed = okH && okN && strings.Contains(haystack, needle)
		if record.Passed {
			record.Message = fmt.Sprintf("contains %q", needle)
		} else {
			record.Message = fmt.Sprintf("expected %v to contain %v", actual, expected)
		}
	default:
		record.Passed = false
		record.Message = fmt.Sprintf("unknown assertion kind %q", kind)
	}

	return record
}

// Check evaluates an assertion and records it on the test context in one
// step, returning whether it passed.
func Check(t *types.TestContext, ev Evaluator, kind string, expected, actual any) bool {
	return t.RecordAssertion(ev.Evaluate(kind, expected, actual))
}
