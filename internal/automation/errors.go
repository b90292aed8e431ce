package automation

import (
	"github.com/pkg/errors"
)

// Argument errors. These are raised before any call reaches the window system.
var (
	// ErrUnknownKeystroke is returned for a keystroke kind outside the
	// supported set. No messages are sent.
	ErrUnknownKeystroke = errors.New("unknown keystroke type")

	// ErrEmptyCharacter is returned when a character operation receives no
	// text to take the first unit from.
	ErrEmptyCharacter = errors.New("character cannot be empty")
)

// Resource errors. These are raised part way through a clipboard write, after
// anything acquired by that call has been released.
var (
	ErrClipboardOpen    = errors.New("failed to open clipboard")
	ErrClipboardAlloc   = errors.New("failed to allocate memory for clipboard")
	ErrClipboardSetData = errors.New("failed to set clipboard data")
)

// ArgumentError reports a missing, malformed, or out-of-range argument.
type ArgumentError struct {
	Err error
}

func (e *ArgumentError) Error() string { return e.Err.Error() }
func (e *ArgumentError) Unwrap() error { return e.Err }

// ResourceError reports that an exclusive OS resource could not be acquired
// or handed off.
type ResourceError struct {
	Err error
}

func (e *ResourceError) Error() string { return e.Err.Error() }
func (e *ResourceError) Unwrap() error { return e.Err }

// Argumentf builds an ArgumentError from a message.
func Argumentf(format string, args ...interface{}) error {
	return &ArgumentError{Err: errors.Errorf(format, args...)}
}

// IsArgumentError reports whether err is, or wraps, an ArgumentError.
func IsArgumentError(err error) bool {
	var target *ArgumentError
	return errors.As(err, &target)
}

// IsResourceError reports whether err is, or wraps, a ResourceError.
func IsResourceError(err error) bool {
	var target *ResourceError
	return errors.As(err, &target)
}
