// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks that k renders to exactly one line that reads back as the
// same key. Fields set through the API are written verbatim; a stray quote or
// a line break in one of them changes or drops keys on the next read.
// prefixes are the modern key type prefixes the file is read with; none means
// DefaultKeyTypePrefixes.
func Validate(k Key, prefixes ...string) error {
	if len(prefixes) == 0 {
		prefixes = DefaultKeyTypePrefixes
	}
	line := k.String()
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("%w: line break in key", ErrInvalidKey)
	}
	back, err := parseLine(line, prefixes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if back.Format() != k.Format() {
		return fmt.Errorf("%w: reads back as a %s key", ErrInvalidKey, back.Format())
	}
	if back.String() != line || back.Comment() != k.Comment() ||
		!slices.Equal(back.Options().Names(), k.Options().Names()) {
		return fmt.Errorf("%w: reads back as %q", ErrInvalidKey, back.String())
	}
	return nil
}
