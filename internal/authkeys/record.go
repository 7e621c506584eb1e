// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"strconv"
	"strings"
)

// Format identifies which of the two authorized_keys line shapes a key uses.
type Format int

const (
	// FormatUnknown is the format of a file with no parsed keys yet.
	FormatUnknown Format = iota
	// FormatLegacy is the "bits exponent modulus [comment]" shape.
	FormatLegacy
	// FormatModern is the "type base64 [comment]" shape.
	FormatModern
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatModern:
		return "modern"
	default:
		return "unknown"
	}
}

// Key is one parsed line of an authorized_keys file. The concrete type is
// either *LegacyKey or *ModernKey and never changes after parsing.
type Key interface {
	Format() Format
	Options() *Options
	Comment() string
	SetComment(string)
	// Email is the comment under the name most files use it for.
	Email() string
	SetEmail(string)
	// String renders the key as a single line without a trailing newline.
	String() string
}

// keyBase carries the fields shared by both formats.
type keyBase struct {
	options *Options
	comment string
}

func (b *keyBase) Options() *Options {
	if b.options == nil {
		b.options = NewOptions()
	}
	return b.options
}

func (b *keyBase) Comment() string     { return b.comment }
func (b *keyBase) SetComment(c string) { b.comment = c }
func (b *keyBase) Email() string       { return b.comment }
func (b *keyBase) SetEmail(e string)   { b.comment = e }

// line joins the options field, body and comment with single spaces.
func (b *keyBase) line(body string) string {
	var sb strings.Builder
	if opts := b.options.String(); opts != "" {
		sb.WriteString(opts)
		sb.WriteByte(' ')
	}
	sb.WriteString(body)
	if b.comment != "" {
		sb.WriteByte(' ')
		sb.WriteString(b.comment)
	}
	return sb.String()
}

// LegacyKey is an SSH protocol 1 RSA key line.
type LegacyKey struct {
	keyBase
	Bits     int
	Exponent int
	Modulus  string
}

// NewLegacyKey returns a legacy key with an empty option set.
func NewLegacyKey(bits, exponent int, modulus, comment string) *LegacyKey {
	return &LegacyKey{
		keyBase:  keyBase{options: NewOptions(), comment: comment},
		Bits:     bits,
		Exponent: exponent,
		Modulus:  modulus,
	}
}

func (k *LegacyKey) Format() Format { return FormatLegacy }

func (k *LegacyKey) String() string {
	return k.line(strconv.Itoa(k.Bits) + " " + strconv.Itoa(k.Exponent) + " " + k.Modulus)
}

// ModernKey is a "type base64" key line such as ssh-ed25519 or ssh-rsa.
type ModernKey struct {
	keyBase
	Type string
	Blob string
}

// NewModernKey returns a modern key with an empty option set.
func NewModernKey(keyType, blob, comment string) *ModernKey {
	return &ModernKey{
		keyBase: keyBase{options: NewOptions(), comment: comment},
		Type:    keyType,
		Blob:    blob,
	}
}

func (k *ModernKey) Format() Format { return FormatModern }

func (k *ModernKey) String() string {
	return k.line(k.Type + " " + k.Blob)
}
