// Package clierr carries process exit codes through cobra's error return.
package clierr

import (
	"errors"
	"fmt"
)

// ExitCoder is an error that knows its process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError sets the process exit code for an outcome the command has
// already reported to the user.
type ExitError struct {
	code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func (e *ExitError) ExitCode() int { return e.code }

// Status returns an error that only sets the exit code. Non-positive codes
// become 1.
func Status(code int) error {
	if code <= 0 {
		code = 1
	}
	return &ExitError{code: code}
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

// IsSilent reports whether err should be suppressed on stderr. Status errors
// are; everything else is printed by main.
func IsSilent(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee)
}
