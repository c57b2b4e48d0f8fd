package conductor

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit
// code 2. Examples include configuration errors and unreadable files.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// TestFailureError represents a failure from test assertions or test errors
// (exit code 1).
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}

// NoTestsError signals that discovery and filtering selected zero test units
// (exit code 3).
type NoTestsError struct {
	Message string
}

func (e *NoTestsError) Error() string {
	return fmt.Sprintf("no tests found: %s", e.Message)
}

// NewNoTestsError creates a new NoTestsError
func NewNoTestsError(message string) *NoTestsError {
	return &NoTestsError{Message: message}
}

// IsNoTestsError checks if the error is or wraps a NoTestsError
func IsNoTestsError(err error) bool {
	var noTestsErr *NoTestsError
	return err != nil && errors.As(err, &noTestsErr)
}

// ReportError signals that tests passed but a report artifact could not be
// written (exit code 4). It is surfaced distinctly from test failures: a run
// with passing tests and a failed report write is neither a TestFailure nor
// a silent Success.
type ReportError struct {
	Err error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report generation failed: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *ReportError) Unwrap() error {
	return e.Err
}

// NewReportError creates a new ReportError
func NewReportError(err error) *ReportError {
	return &ReportError{Err: err}
}

// IsReportError checks if the error is or wraps a ReportError
func IsReportError(err error) bool {
	var reportErr *ReportError
	return err != nil && errors.As(err, &reportErr)
}
