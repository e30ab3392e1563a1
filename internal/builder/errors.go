package builder

import (
	"errors"
	"fmt"
)

// BuildError is a fatal configuration error: duplicate id, missing
// namespace, conflicting attributes, ambiguous accessors. It aborts the load
// phase and is never retried.
type BuildError struct {
	msg   string
	cause error
}

func (e *BuildError) Error() string {
	return e.msg
}

func (e *BuildError) Unwrap() error {
	return e.cause
}

func buildErrorf(format string, args ...any) *BuildError {
	err := fmt.Errorf(format, args...)
	return &BuildError{msg: err.Error(), cause: errors.Unwrap(err)}
}

// IsBuildError checks whether err is a fatal configuration error.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}
