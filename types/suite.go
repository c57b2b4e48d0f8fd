package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// SuiteResult aggregates every TestResult from one run, in execution order.
// The orchestrator is the sole owner; reporters receive a read-only reference.
type SuiteResult struct {
	SuiteName string
	RunID     string
	Results   []*TestResult
	Start     time.Time
	End       time.Time
	Duration  time.Duration

	completed bool
}

// NewSuiteResult creates an empty suite result stamped with the run start time.
func NewSuiteResult(name string) *SuiteResult {
	return &SuiteResult{
		SuiteName: name,
		Start:     time.Now(),
	}
}

// AddResult appends a test result. Insertion order is execution order.
func (s *SuiteResult) AddResult(result *TestResult) {
	s.Results = append(s.Results, result)
}

// Complete stamps the end time and duration. It is called exactly once after
// the last test finishes; further calls are rejected.
func (s *SuiteResult) Complete() error {
	if s.completed {
		return fmt.Errorf("suite %q already completed", s.SuiteName)
	}
	s.End = time.Now()
	s.Duration = s.End.Sub(s.Start)
	s.completed = true
	return nil
}

// Completed reports whether Complete has been called.
func (s *SuiteResult) Completed() bool {
	return s.completed
}

// SortByIndex re-sequences results into discovery order. Parallel workers may
// append out of order; reporting always runs on the sorted sequence.
func (s *SuiteResult) SortByIndex() {
	sort.SliceStable(s.Results, func(i, j int) bool {
		return s.Results[i].Index < s.Results[j].Index
	})
}

// All counts below recompute from the live Results slice so they can never
// desynchronize from the source list.

// TotalTests returns the number of recorded test results.
func (s *SuiteResult) TotalTests() int { return len(s.Results) }

// PassedTests returns the number of passing tests.
func (s *SuiteResult) PassedTests() int { return s.countStatus(TestStatusPass) }

// FailedTests returns the number of tests with assertion mismatches.
func (s *SuiteResult) FailedTests() int { return s.countStatus(TestStatusFail) }

// ErroredTests returns the number of tests that hit unexpected failures.
func (s *SuiteResult) ErroredTests() int { return s.countStatus(TestStatusError) }

// SkippedTests returns the number of deliberately omitted tests.
func (s *SuiteResult) SkippedTests() int { return s.countStatus(TestStatusSkip) }

func (s *SuiteResult) countStatus(status TestStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// TotalAssertions returns the number of assertions recorded across all tests.
func (s *SuiteResult) TotalAssertions() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Assertions)
	}
	return n
}

// PassedAssertions returns the number of passing assertions across all tests.
func (s *SuiteResult) PassedAssertions() int {
	n := 0
	for _, r := range s.Results {
		for _, a := range r.Assertions {
			if a.Passed {
				n++
			}
		}
	}
	return n
}

// FailedAssertions returns the number of failing assertions across all tests.
func (s *SuiteResult) FailedAssertions() int {
	return s.TotalAssertions() - s.PassedAssertions()
}

// SuccessRate returns passed/total as a percentage, and exactly 0 for an
// empty suite.
func (s *SuiteResult) SuccessRate() float64 {
	total := s.TotalTests()
	if total == 0 {
		return 0.0
	}
	return 100.0 * float64(s.PassedTests()) / float64(total)
}

// HasFailures reports whether any test failed or errored.
func (s *SuiteResult) HasFailures() bool {
	return s.FailedTests() > 0 || s.ErroredTests() > 0
}

// Status returns the overall suite status: error if anything errored, fail if
// anything failed, skip when every test was skipped, pass otherwise.
func (s *SuiteResult) Status() TestStatus {
	switch {
	case s.ErroredTests() > 0:
		return TestStatusError
	case s.FailedTests() > 0:
		return TestStatusFail
	case s.TotalTests() > 0 && s.SkippedTests() == s.TotalTests():
		return TestStatusSkip
	default:
		return TestStatusPass
	}
}

// Categories returns the distinct test categories in first-seen order.
func (s *SuiteResult) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, r := range s.Results {
		category := r.Category
		if category == "" {
			category = DefaultCategory
		}
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}
	return categories
}

// ResultsByCategory returns results grouped per category, preserving both
// first-seen category order and per-category insertion order.
func (s *SuiteResult) ResultsByCategory() ([]string, map[string][]*TestResult) {
	categories := s.Categories()
	grouped := make(map[string][]*TestResult, len(categories))
	for _, r := range s.Results {
		category := r.Category
		if category == "" {
			category = DefaultCategory
		}
		grouped[category] = append(grouped[category], r)
	}
	return categories, grouped
}

// JSON wire form. Durations serialize as fractional seconds throughout, so
// consumers never see the int-vs-float ambiguity of raw nanosecond counts.

type suiteJSON struct {
	SuiteName        string           `json:"suite_name"`
	RunID            string           `json:"run_id,omitempty"`
	Start            time.Time        `json:"start"`
	End              time.Time        `json:"end"`
	DurationSeconds  float64          `json:"duration_seconds"`
	Completed        bool             `json:"completed"`
	TotalTests       int              `json:"total_tests"`
	PassedTests      int              `json:"passed_tests"`
	FailedTests      int              `json:"failed_tests"`
	ErroredTests     int              `json:"errored_tests"`
	SkippedTests     int              `json:"skipped_tests"`
	TotalAssertions  int              `json:"total_assertions"`
	PassedAssertions int              `json:"passed_assertions"`
	FailedAssertions int              `json:"failed_assertions"`
	SuccessRate      float64          `json:"success_rate"`
	Tests            []testResultJSON `json:"tests"`
}

type testResultJSON struct {
	TestName        string            `json:"test_name"`
	TestClass       string            `json:"test_class"`
	Category        string            `json:"category"`
	Status          TestStatus        `json:"status"`
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	DurationSeconds float64           `json:"duration_seconds"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	StackTrace      string            `json:"stack_trace,omitempty"`
	Assertions      []AssertionRecord `json:"assertions,omitempty"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
	Output          []string          `json:"output,omitempty"`
	Index           int               `json:"index"`
}

// MarshalJSON renders the suite with derived counts included, mirroring the
// full result model for machine consumers.
func (s *SuiteResult) MarshalJSON() ([]byte, error) {
	out := suiteJSON{
		SuiteName:        s.SuiteName,
		RunID:            s.RunID,
		Start:            s.Start,
		End:              s.End,
		DurationSeconds:  s.Duration.Seconds(),
		Completed:        s.completed,
		TotalTests:       s.TotalTests(),
		PassedTests:      s.PassedTests(),
		FailedTests:      s.FailedTests(),
		ErroredTests:     s.ErroredTests(),
		SkippedTests:     s.SkippedTests(),
		TotalAssertions:  s.TotalAssertions(),
		PassedAssertions: s.PassedAssertions(),
		FailedAssertions: s.FailedAssertions(),
		SuccessRate:      s.SuccessRate(),
		Tests:            make([]testResultJSON, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		out.Tests = append(out.Tests, testResultJSON{
			TestName:        r.TestName,
			TestClass:       r.TestClass,
			Category:        r.Category,
			Status:          r.Status,
			Start:           r.Start,
			End:             r.End,
			DurationSeconds: r.Duration.Seconds(),
			ErrorMessage:    r.ErrorMessage,
			StackTrace:      r.StackTrace,
			Assertions:      r.Assertions,
			Metadata:        r.Metadata,
			Output:          r.Output,
			Index:           r.Index,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON reconstructs a suite from its wire form. Reconstructed test
// results are final: their terminal status was already recorded.
func (s *SuiteResult) UnmarshalJSON(data []byte) error {
	var in suiteJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.SuiteName = in.SuiteName
	s.RunID = in.RunID
	s.Start = in.Start
	s.End = in.End
	s.Duration = secondsToDuration(in.DurationSeconds)
	s.completed = in.Completed
	s.Results = make([]*TestResult, 0, len(in.Tests))
	for _, t := range in.Tests {
		s.Results = append(s.Results, &TestResult{
			TestName:     t.TestName,
			TestClass:    t.TestClass,
			Category:     t.Category,
			Status:       t.Status,
			Start:        t.Start,
			End:          t.End,
			Duration:     secondsToDuration(t.DurationSeconds),
			ErrorMessage: t.ErrorMessage,
			StackTrace:   t.StackTrace,
			Assertions:   t.Assertions,
			Metadata:     t.Metadata,
			Output:       t.Output,
			Index:        t.Index,
			final:        t.Status != "",
		})
	}
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
