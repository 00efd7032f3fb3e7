package errors

import (
	"encoding/json"
	"errors"
)

// Exit codes returned by commands.
const (
	ExitInvalidArguments = 1
	ExitProcessingFailed = 2
	ExitFlawsFound       = 3
)

// CommandError represents an error that occurred during command execution, storing relevant results.
type CommandError struct {
	ExitCode    int         `json:"exit_code"`
	CommonError string      `json:"error"`
	Args        interface{} `json:"args,omitempty"`
	Result      interface{} `json:"result,omitempty"`
	err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.err
}

// JSON renders the error with its args and partial result.
func (e *CommandError) JSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return e.CommonError
	}
	return string(b)
}

// NewCommandError creates a new CommandError instance, encapsulating args, result, and the error message.
func NewCommandError(args interface{}, result interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Args:        args,
		Result:      result,
		err:         err,
	}
}

// ExitCode returns the exit code carried by err, 0 for nil and 1 for plain errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return 1
}
