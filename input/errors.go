package input

import (
	"errors"
	"fmt"
)

var (
	// ErrUnmappableChar is returned when the active keyboard layout has no
	// key combination producing a character.
	ErrUnmappableChar = errors.New("character cannot be typed with the current keyboard layout")
	// ErrOSQuery is returned when a cursor query or placement fails.
	ErrOSQuery = errors.New("os query failed")
	// ErrUnsupported is returned by the backend on platforms without SendInput.
	ErrUnsupported = errors.New("input injection is not supported on this platform")
	// ErrInvalidInput is returned for an Input or Button outside the known values.
	ErrInvalidInput = errors.New("invalid input")
)

// CharError reports the character that could not be resolved.
type CharError struct {
	Char rune
}

func (e *CharError) Error() string {
	return fmt.Sprintf("%q (U+%04X): %s", e.Char, e.Char, ErrUnmappableChar.Error())
}

func (e *CharError) Unwrap() error { return ErrUnmappableChar }

// OSError wraps the error code reported by a failed OS call.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OSError) Unwrap() []error { return []error{ErrOSQuery, e.Err} }
