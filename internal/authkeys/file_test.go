// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

const legacyFixture = `# legacy keys
1024 35 1111111111 first@example.com

from="10.0.0.1" 2048 65537 2222222222 second@example.com with words
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authorized_keys")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func quietLogger(buf *bytes.Buffer) *clog.Logger {
	return clog.New(buf)
}

func TestOpen_MissingFile(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if f != nil {
		t.Fatalf("no File should be returned on open failure")
	}
	if !errors.Is(err, ErrOpen) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error should wrap ErrOpen and ErrNotExist, got %v", err)
	}
}

func TestOpen_SkipsCommentsAndBlankLines(t *testing.T) {
	var logs bytes.Buffer
	f, err := Open(writeFixture(t, legacyFixture), WithLogger(quietLogger(&logs)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(f.Keys()) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(f.Keys()))
	}
	if f.Format() != FormatLegacy {
		t.Fatalf("expected legacy file, got %s", f.Format())
	}
	if len(f.Rejected()) != 0 || logs.Len() != 0 {
		t.Fatalf("comment and blank lines must not be reported; rejected=%v logs=%s", f.Rejected(), logs.String())
	}
	if got := f.Keys()[1].Comment(); got != "second@example.com with words" {
		t.Fatalf("unexpected comment: %q", got)
	}
}

func TestParse_MixedFormatsAreRejected(t *testing.T) {
	content := strings.Join([]string{
		"ssh-rsa AAAAB3Nza first",
		"1024 35 123456 legacy",
		"ssh-ed25519 AAAAC3Nza second",
		"garbage line here",
	}, "\n")
	var logs bytes.Buffer
	f, err := Parse(strings.NewReader(content), "mixed_keys", WithLogger(quietLogger(&logs)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Keys()) != 2 {
		t.Fatalf("expected 2 modern keys, got %d", len(f.Keys()))
	}
	for _, k := range f.Keys() {
		if k.Format() != FormatModern {
			t.Fatalf("file mixes formats: %s", k)
		}
	}

	rej := f.Rejected()
	if len(rej) != 2 {
		t.Fatalf("expected 2 rejected lines, got %d", len(rej))
	}
	if rej[0].Line != 2 || !errors.Is(rej[0], ErrFormatMismatch) {
		t.Fatalf("line 2 should be a format mismatch, got %v", rej[0])
	}
	if rej[1].Line != 4 || !errors.Is(rej[1], ErrUnknownFormat) {
		t.Fatalf("line 4 should be unknown format, got %v", rej[1])
	}

	out := logs.String()
	if !strings.Contains(out, "mixed_keys") || !strings.Contains(out, "line=2") {
		t.Fatalf("warning should carry file and line, got: %s", out)
	}
}

func TestParse_FirstValidLineFixesFormat(t *testing.T) {
	content := "bogus\n1024 35 1 a\nssh-rsa AAAA b\n2048 35 2 c\n"
	f, err := Parse(strings.NewReader(content), "x", WithLogger(quietLogger(&bytes.Buffer{})))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.Format() != FormatLegacy || len(f.Keys()) != 2 {
		t.Fatalf("expected 2 legacy keys, got %d (%s)", len(f.Keys()), f.Format())
	}
}

func TestMutationThenSave(t *testing.T) {
	path := writeFixture(t, legacyFixture)
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	f.Keys()[0].(*LegacyKey).Bits = 4096
	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatalf("re-Open failed: %v", err)
	}
	k0 := again.Keys()[0].(*LegacyKey)
	if k0.Bits != 4096 {
		t.Fatalf("expected bits 4096, got %d", k0.Bits)
	}
	if !sameKey(f.Keys()[1], again.Keys()[1]) {
		t.Fatalf("second key changed: %s vs %s", f.Keys()[1], again.Keys()[1])
	}
}

func TestOptionDeletionRoundTrip(t *testing.T) {
	path := writeFixture(t, "ssh-ed25519 AAAAC3Nza me@host\nssh-rsa AAAAB3Nza other\n")
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	f.Keys()[0].Options().Set("From", Single("*.example.com"))
	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err = Open(path)
	if err != nil {
		t.Fatalf("re-Open failed: %v", err)
	}
	v, ok := f.Keys()[0].Options().Get("From")
	if !ok || v.Value() != "*.example.com" {
		t.Fatalf("From should be present after save, got %q ok=%v", v.Value(), ok)
	}

	f.Keys()[0].Options().Delete("From")
	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	f, err = Open(path)
	if err != nil {
		t.Fatalf("re-Open failed: %v", err)
	}
	if v, ok := f.Keys()[0].Options().Get("From"); ok {
		t.Fatalf("From should be absent, got %v", v)
	}
}

func TestOptionRepetitionDeleteAndRender(t *testing.T) {
	f, err := Parse(strings.NewReader(`from="a.com",from="b.com" ssh-rsa AAAA c`+"\n"), "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	k := f.Keys()[0]
	v, _ := k.Options().Get("from")
	if !reflect.DeepEqual(v.Values(), []string{"a.com", "b.com"}) {
		t.Fatalf("expected list, got %q", v.Values())
	}
	k.Options().Delete("from")
	if got := f.Render(); got != "ssh-rsa AAAA c\n" {
		t.Fatalf("render after delete = %q", got)
	}
}

func TestRender_RoundTripIdentity(t *testing.T) {
	content := `no-pty,command="/bin/true" ssh-rsa AAAAB3Nza one@host
from="a",from="b" ssh-ed25519 AAAAC3Nza two@host and text
ssh-dss AAAAB3NzaC1kc3M
`
	f, err := Parse(strings.NewReader(content), "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := f.Render(); got != content {
		t.Fatalf("render mismatch:\n%s\nwant:\n%s", got, content)
	}
	again, err := Parse(strings.NewReader(f.Render()), "x")
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}
	for i := range f.Keys() {
		if !sameKey(f.Keys()[i], again.Keys()[i]) {
			t.Fatalf("key %d differs after round trip", i)
		}
	}
}

func TestSharedReferences(t *testing.T) {
	f, err := Parse(strings.NewReader("ssh-rsa AAAA c\n"), "x")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	held, err := f.Key(0)
	if err != nil {
		t.Fatalf("Key(0): %v", err)
	}
	held.SetComment("changed")
	if got := f.Render(); got != "ssh-rsa AAAA changed\n" {
		t.Fatalf("mutation through held key not visible: %q", got)
	}
	if _, err := f.Key(1); err == nil {
		t.Fatalf("expected error for out of range index")
	}
}

func TestSaveAs_KeepsMode(t *testing.T) {
	path := writeFixture(t, "ssh-rsa AAAA c\n")
	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o640 {
		t.Fatalf("mode changed to %v", st.Mode().Perm())
	}

	newPath := filepath.Join(t.TempDir(), "copy")
	if err := f.SaveAs(newPath); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	st, err = os.Stat(newPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("new file mode = %v, want 0600", st.Mode().Perm())
	}
}

func TestWithKeyTypePrefixes(t *testing.T) {
	content := "ecdsa-sha2-nistp256 AAAAE2Vj a\nsk-ssh-ed25519@openssh.com AAAAGnNr b\n"
	f, err := Parse(strings.NewReader(content), "x",
		WithKeyTypePrefixes("ssh-", "ecdsa-", "sk-"),
		WithLogger(quietLogger(&bytes.Buffer{})))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Keys()) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(f.Keys()))
	}
}
