// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteAndRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authorized_keys")
	orig := "ssh-ed25519 AAAAC3Nza me@host\n"
	if err := os.WriteFile(path, []byte(orig), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	archive, err := Write(path, "", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Dir(archive) != dir || !strings.HasSuffix(archive, Ext) {
		t.Fatalf("unexpected archive path: %s", archive)
	}

	if err := os.WriteFile(path, []byte("ssh-rsa AAAA changed\n"), 0o600); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := Restore(archive, path); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != orig {
		t.Fatalf("restored content = %q, want %q", got, orig)
	}
}

func TestList_OrdersByTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authorized_keys")
	if err := os.WriteFile(path, []byte("x\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	backups := filepath.Join(dir, "backups")
	later, err := Write(path, backups, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	earlier, err := Write(path, backups, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	// unrelated file in the same directory
	if err := os.WriteFile(filepath.Join(backups, "other.zst"), nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := List(path, backups)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0] != earlier || got[1] != later {
		t.Fatalf("unexpected list: %v", got)
	}

	none, err := List(path, filepath.Join(dir, "missing"))
	if err != nil || len(none) != 0 {
		t.Fatalf("missing dir should list nothing, got %v %v", none, err)
	}
}

func TestWrite_MissingSource(t *testing.T) {
	if _, err := Write(filepath.Join(t.TempDir(), "nope"), "", time.Now()); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestRead_NotZstd(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bogus.zst")
	if err := os.WriteFile(p, []byte("plain text"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(p); err == nil {
		t.Fatalf("expected error for non-zstd data")
	}
}

func TestWriteArchive_NoOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authorized_keys")
	if err := os.WriteFile(path, []byte("ssh-rsa AAAA c\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	archive := filepath.Join(dir, "keys.zst")
	if err := WriteArchive(path, archive); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}
	data, err := Read(archive)
	if err != nil || string(data) != "ssh-rsa AAAA c\n" {
		t.Fatalf("Read = %q, %v", data, err)
	}
	if err := WriteArchive(path, archive); err == nil {
		t.Fatalf("existing archive must not be overwritten")
	}
}
