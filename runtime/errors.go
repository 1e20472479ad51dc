package runtime

import (
	"errors"
	"fmt"
)

// ErrLaunch classifies every failure to start the lint tool.
var ErrLaunch = errors.New("launch failed")

// ErrLaunchTimeout is wrapped by LaunchError when the tool did not start
// within the launch timeout.
var ErrLaunchTimeout = errors.New("launch timed out")

// LaunchError reports that the tool process could not be spawned.
// No output is parsed and no run record is written.
type LaunchError struct {
	// Path is the executable as configured.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Is matches ErrLaunch.
func (e *LaunchError) Is(target error) bool {
	return target == ErrLaunch
}

// IsLaunchError reports whether err is a LaunchError.
func IsLaunchError(err error) bool {
	var le *LaunchError
	return errors.As(err, &le)
}
