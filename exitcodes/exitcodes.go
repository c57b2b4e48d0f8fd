// Package exitcodes defines the standard exit codes used by conductor.
package exitcodes

// Exit code constants used by conductor
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when all tests pass successfully
// * TestFailure (1): Used when one or more tests fail or error
// * RuntimeErr (2): Used for configuration errors, panics or other runtime failures
// * NoTestsFound (3): Used when discovery and filtering select zero test units
// * ReportFailure (4): Used when tests pass but a report artifact could not be written
const (
	Success       = 0 // All tests pass
	TestFailure   = 1 // Test failures or errors
	RuntimeErr    = 2 // Runtime or configuration errors
	NoTestsFound  = 3 // No test units selected
	ReportFailure = 4 // Tests passed but report generation failed
)
