// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshkey decodes the key blob of a modern authorized_keys line for
// display: fingerprints, sizes and warnings about weak algorithms. Parsing
// key files never depends on it.
package sshkey

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Info summarizes a decoded public key.
type Info struct {
	Type        string
	Bits        int
	Fingerprint string
	Warning     string
}

// Describe decodes the base64 blob of a key line. keyType is the type field
// of the line; a blob of a different type is an error.
func Describe(keyType, blob string) (Info, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return Info{}, fmt.Errorf("key data is not base64: %w", err)
	}
	pub, err := ssh.ParsePublicKey(raw)
	if err != nil {
		return Info{}, fmt.Errorf("failed to parse %s key: %w", keyType, err)
	}
	if pub.Type() != keyType {
		return Info{}, fmt.Errorf("key type mismatch: line says %s, key data is %s", keyType, pub.Type())
	}
	return Info{
		Type:        pub.Type(),
		Bits:        keyBits(pub),
		Fingerprint: ssh.FingerprintSHA256(pub),
		Warning:     CheckKeyAlgorithm(pub),
	}, nil
}

func keyBits(pub ssh.PublicKey) int {
	cpk, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return 0
	}
	if rk, ok := cpk.CryptoPublicKey().(*rsa.PublicKey); ok {
		return rk.N.BitLen()
	}
	return 0
}

// CheckKeyAlgorithm returns a warning for keys that current OpenSSH releases
// refuse or consider weak, or "" if the key is fine.
func CheckKeyAlgorithm(pub ssh.PublicKey) string {
	switch pub.Type() {
	case ssh.KeyAlgoDSA:
		return "DSA keys are disabled in OpenSSH 7.0 and later"
	case ssh.KeyAlgoRSA:
		if bits := keyBits(pub); bits > 0 && bits < 2048 {
			return fmt.Sprintf("RSA key is only %d bits; use at least 2048", bits)
		}
	}
	return ""
}

// LegacyWarning is the warning attached to every protocol 1 key.
const LegacyWarning = "SSH protocol 1 keys are not accepted by OpenSSH 7.4 and later"
