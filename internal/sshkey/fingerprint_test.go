// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.
package sshkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func blobOf(t *testing.T, pub ssh.PublicKey) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(pub.Marshal())
}

func TestDescribe_Ed25519(t *testing.T) {
	edPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	pub, err := ssh.NewPublicKey(edPub)
	if err != nil {
		t.Fatalf("NewPublicKey: %v", err)
	}

	info, err := Describe("ssh-ed25519", blobOf(t, pub))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Type != "ssh-ed25519" {
		t.Fatalf("unexpected type: %s", info.Type)
	}
	if info.Fingerprint != ssh.FingerprintSHA256(pub) {
		t.Fatalf("unexpected fingerprint: %s", info.Fingerprint)
	}
	if !strings.HasPrefix(info.Fingerprint, "SHA256:") {
		t.Fatalf("fingerprint should be SHA256 form: %s", info.Fingerprint)
	}
	if info.Warning != "" {
		t.Fatalf("did not expect warning, got: %s", info.Warning)
	}
}

func TestDescribe_WeakRSA(t *testing.T) {
	rk, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	pub, err := ssh.NewPublicKey(&rk.PublicKey)
	if err != nil {
		t.Fatalf("NewPublicKey: %v", err)
	}
	info, err := Describe("ssh-rsa", blobOf(t, pub))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Bits != 1024 {
		t.Fatalf("expected 1024 bits, got %d", info.Bits)
	}
	if info.Warning == "" {
		t.Fatalf("expected warning for 1024-bit RSA key")
	}
}

func TestDescribe_Errors(t *testing.T) {
	if _, err := Describe("ssh-rsa", "!!!not-base64"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
	if _, err := Describe("ssh-rsa", base64.StdEncoding.EncodeToString([]byte("junk"))); err == nil {
		t.Fatalf("expected error for junk key data")
	}

	edPub, _, _ := ed25519.GenerateKey(rand.Reader)
	pub, _ := ssh.NewPublicKey(edPub)
	if _, err := Describe("ssh-rsa", blobOf(t, pub)); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}
