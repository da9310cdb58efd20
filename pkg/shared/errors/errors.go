package errors

import "fmt"

// CommandError carries the exit code a failed command should terminate
// the process with, together with the underlying cause.
type CommandError struct {
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying cause.
func (e *CommandError) Unwrap() error { return e.Err }

// NewCommandError wraps err with an exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{ExitCode: code, Err: err}
}

// SpecError is a failure to load a suppression specification file.
type SpecError struct {
	Path string
	Err  error
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("suppression specification %q: %v", e.Path, e.Err)
}

func (e *SpecError) Unwrap() error { return e.Err }

// NewSpecError wraps err with the path of the offending file.
func NewSpecError(path string, err error) *SpecError {
	return &SpecError{Path: path, Err: err}
}
