package cmd

import "fmt"

// Exit codes.
const (
	ExitOK = 0
	// ExitFindings means the command ran and found problems: validation
	// errors or failed script steps.
	ExitFindings = 1
	// ExitFailure means the command could not run.
	ExitFailure = 2
)

// ExitError carries a process exit code. A nil Err means the command has
// already reported the problem.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func findingsExit() error {
	return &ExitError{Code: ExitFindings}
}
