package core

import (
	"errors"
)

// Caller contract violations. Operations return these without side effects.
var (
	ErrInvalidHandle    = errors.New("invalid or unavailable handle")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrNotInitialized   = errors.New("engine not initialized")
)

// Fatal conditions. Callers are expected to abort.
var (
	ErrPoolExhausted = errors.New("id pool exhausted")
	ErrUnsupported   = errors.New("unsupported configuration")
	ErrUnknown       = errors.New("unknown")
)

var (
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
)

// IsFatal reports whether err belongs to the fatal class, i.e. anything that is
// not a caller contract violation nor a skipped frame.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrInvalidHandle),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrNotInitialized),
		errors.Is(err, ErrSwapchainBooting):
		return false
	}
	return true
}
