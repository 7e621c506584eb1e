// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"strings"
	"unicode"
)

// splitter decides whether a rune separates two tokens. Runs of separators
// produce no empty tokens.
type splitter func(r rune) bool

func isSpace(r rune) bool { return unicode.IsSpace(r) }
func isComma(r rune) bool { return r == ',' }

// tokenize splits s into tokens delimited by sep. A double-quoted span is
// part of the surrounding token even if it contains separators, and a
// backslash hides the special meaning of the next rune. Quote and escape
// characters stay in the token text; an unterminated quote runs to the end
// of the input.
func tokenize(s string, sep splitter) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
		}
		cur.Reset()
		started = false
	}

	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case !inQuote && sep(r):
			flush()
			continue
		}
		cur.WriteRune(r)
		started = true
	}
	flush()
	return tokens
}

// splitFields splits a line into whitespace separated fields. When keepQuotes
// is false, fields fully wrapped in double quotes lose the wrapping pair.
func splitFields(line string, keepQuotes bool) []string {
	fields := tokenize(line, isSpace)
	if !keepQuotes {
		for i, f := range fields {
			fields[i] = unquote(f)
		}
	}
	return fields
}

// splitOptions splits an options field on commas, keeping quotes.
func splitOptions(field string) []string {
	return tokenize(field, isComma)
}

// unquote removes one pair of enclosing double quotes. An escaped closing
// quote does not count.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	slashes := len(inner) - len(strings.TrimRight(inner, `\`))
	if slashes%2 == 1 {
		return s
	}
	return inner
}
