// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.
package i18n

import (
	"reflect"
	"testing"
)

func TestInitAndAvailableLocales(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}
	if got := Available(); !reflect.DeepEqual(got, []string{"de", "en"}) {
		t.Fatalf("unexpected locales: %v", got)
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")

	if got := T("list.header_comment"); got != "Comment" {
		t.Fatalf("expected 'Comment', got %q", got)
	}
	if got := T("check.problems", "keys", 2); got != "keys: 2 line(s) skipped" {
		t.Fatalf("unexpected formatted translation: %q", got)
	}

	SetLang("de")
	defer SetLang("en")
	if got := T("list.header_comment"); got != "Kommentar" {
		t.Fatalf("expected German 'Kommentar', got %q", got)
	}
}

func TestT_MissingIDFallsBack(t *testing.T) {
	Init("en")
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("expected message ID back, got %q", got)
	}
}

func TestT_UnknownLanguageUsesEnglish(t *testing.T) {
	Init("xx")
	defer Init("en")
	if got := T("list.header_type"); got != "Type" {
		t.Fatalf("expected English fallback, got %q", got)
	}
}
