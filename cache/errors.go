package cache

import (
	"errors"
	"fmt"
)

// ErrBuildFailed is matched by every *BuildError.
var ErrBuildFailed = errors.New("cache: build failed")

// BuildError reports a failed or panicking build. Every caller waiting on
// the same key receives the same *BuildError.
type BuildError struct {
	Key Key
	// Err is the error returned by the build, or a description of the
	// panic value.
	Err error
	// Panicked is true when the build panicked.
	Panicked bool
}

func (e *BuildError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("cache: build of %s panicked: %v", e.Key.Content.Short(), e.Err)
	}
	return fmt.Sprintf("cache: build of %s failed: %v", e.Key.Content.Short(), e.Err)
}

// Is reports whether target is ErrBuildFailed.
func (e *BuildError) Is(target error) bool {
	return target == ErrBuildFailed
}

// Unwrap returns the underlying build error.
func (e *BuildError) Unwrap() error {
	return e.Err
}
