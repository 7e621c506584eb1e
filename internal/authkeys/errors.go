// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"errors"
	"fmt"
)

var (
	// ErrOpen is returned when the key file cannot be opened for reading.
	ErrOpen = errors.New("cannot open key file")
	// ErrUnknownFormat is returned for a line whose first field is neither a
	// key type nor a key length, even after skipping an options field.
	ErrUnknownFormat = errors.New("unrecognized key format")
	// ErrTooFewFields is returned when a line lacks the fields its format needs.
	ErrTooFewFields = errors.New("missing key fields")
	// ErrBadNumber is returned when a legacy key length or exponent is not a
	// positive integer.
	ErrBadNumber = errors.New("invalid number")
	// ErrFormatMismatch is returned for a line whose format differs from the
	// format established by the first key of the file.
	ErrFormatMismatch = errors.New("key format differs from the rest of the file")
	// ErrInvalidKey is returned for a key that would not read back as the
	// same single key once written.
	ErrInvalidKey = errors.New("key cannot be written safely")
)

// LineError describes a line that was skipped while reading a key file.
type LineError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
