// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLine parses one non-comment authorized_keys line using the default
// key type prefixes.
func ParseLine(line string) (Key, error) {
	return parseLine(line, DefaultKeyTypePrefixes)
}

func parseLine(line string, prefixes []string) (Key, error) {
	format, optField, fields := detect(splitFields(line, true), prefixes)
	if format == FormatUnknown {
		return nil, ErrUnknownFormat
	}

	opts := NewOptions()
	if optField != "" {
		opts = DecodeOptions(optField)
	}
	for i, f := range fields {
		fields[i] = unquote(f)
	}
	return build(format, fields, opts)
}

// build assembles a key of the given format from its data fields.
func build(format Format, fields []string, opts *Options) (Key, error) {
	switch format {
	case FormatLegacy:
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: legacy key needs bits, exponent and modulus, got %d field(s)", ErrTooFewFields, len(fields))
		}
		bits, err := positiveInt("bits", fields[0])
		if err != nil {
			return nil, err
		}
		exp, err := positiveInt("exponent", fields[1])
		if err != nil {
			return nil, err
		}
		k := NewLegacyKey(bits, exp, fields[2], strings.Join(fields[3:], " "))
		k.options = opts
		return k, nil
	case FormatModern:
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: key type %q has no key data", ErrTooFewFields, fields[0])
		}
		k := NewModernKey(fields[0], fields[1], strings.Join(fields[2:], " "))
		k.options = opts
		return k, nil
	}
	return nil, ErrUnknownFormat
}

func positiveInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrBadNumber, name, s)
	}
	return n, nil
}
