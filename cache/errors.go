package cache

import "fmt"

// ErrHookPanicked wraps a value recovered from a panicking user hook.
var ErrHookPanicked = NewError("hook panicked")

func hookError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrHookPanicked, err)
	}
	return fmt.Errorf("%w: %v", ErrHookPanicked, r)
}
