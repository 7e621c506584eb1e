// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import "strings"

// DefaultKeyTypePrefixes are the first-field prefixes that mark a modern key.
var DefaultKeyTypePrefixes = []string{"ssh-"}

// classify applies the two positive detection rules to a single field.
func classify(field string, prefixes []string) Format {
	for _, p := range prefixes {
		if strings.HasPrefix(field, p) {
			return FormatModern
		}
	}
	if field != "" && field[0] >= '0' && field[0] <= '9' {
		return FormatLegacy
	}
	return FormatUnknown
}

// detect decides the format of a tokenized line. When the first field is not
// recognized it is taken as the options field and the next field is checked
// once more. The returned fields exclude the options field.
func detect(fields []string, prefixes []string) (format Format, options string, rest []string) {
	if len(fields) == 0 {
		return FormatUnknown, "", nil
	}
	if f := classify(fields[0], prefixes); f != FormatUnknown {
		return f, "", fields
	}
	options, rest = fields[0], fields[1:]
	if len(rest) == 0 {
		return FormatUnknown, options, rest
	}
	return classify(rest[0], prefixes), options, rest
}
