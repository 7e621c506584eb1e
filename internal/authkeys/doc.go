// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package authkeys reads, edits and writes OpenSSH authorized_keys files.
//
// Two line shapes are understood: legacy protocol 1 keys
// ("bits exponent modulus [comment]") and modern keys
// ("type base64 [comment]"), each optionally preceded by a comma separated
// options field. A file holds keys of one shape only; lines of the other
// shape, and lines that cannot be parsed, are skipped with a warning.
//
// Rendering normalizes whitespace and option quoting but keeps every value,
// so a file that is read and saved without changes parses back to the same
// keys. Comment and blank lines are not kept.
package authkeys
