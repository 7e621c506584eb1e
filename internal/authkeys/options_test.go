// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"reflect"
	"testing"
)

func TestDecodeOptions_Shapes(t *testing.T) {
	o := DecodeOptions(`no-pty,command="echo hi",from="a.com",from="b.com",tunnel=0`)

	if got := o.Names(); !reflect.DeepEqual(got, []string{"no-pty", "command", "from", "tunnel"}) {
		t.Fatalf("unexpected order: %q", got)
	}

	v, ok := o.Get("no-pty")
	if !ok || v.Kind() != OptionFlag {
		t.Fatalf("no-pty: want flag, got %v ok=%v", v.Kind(), ok)
	}
	v, _ = o.Get("command")
	if v.Kind() != OptionSingle || v.Value() != "echo hi" {
		t.Fatalf("command: got %v %q", v.Kind(), v.Value())
	}
	v, _ = o.Get("from")
	if v.Kind() != OptionMany || !reflect.DeepEqual(v.Values(), []string{"a.com", "b.com"}) {
		t.Fatalf("from: got %v %q", v.Kind(), v.Values())
	}
	v, _ = o.Get("tunnel")
	if v.Kind() != OptionSingle || v.Value() != "0" {
		t.Fatalf("tunnel: got %v %q", v.Kind(), v.Value())
	}
}

func TestDecodeOptions_Empty(t *testing.T) {
	if o := DecodeOptions(""); o.Len() != 0 {
		t.Fatalf("expected empty options, got %d", o.Len())
	}
}

func TestDecodeOptions_CaseSensitive(t *testing.T) {
	o := DecodeOptions(`From="a",from="b"`)
	if o.Len() != 2 {
		t.Fatalf("names differing in case are distinct, got %q", o.Names())
	}
}

func TestOptionsAdd_Repetition(t *testing.T) {
	o := NewOptions()
	o.Add("no-pty", Flag())
	o.Add("no-pty", Flag())
	if v, _ := o.Get("no-pty"); v.Kind() != OptionFlag {
		t.Fatalf("repeated flag should stay a flag, got %v", v.Kind())
	}

	o.Add("from", Single("a"))
	o.Add("from", Flag())
	if v, _ := o.Get("from"); v.Kind() != OptionSingle {
		t.Fatalf("bare occurrence should not change a valued option, got %v", v.Kind())
	}
	o.Add("from", Single("b"))
	o.Add("from", Single("c"))
	if v, _ := o.Get("from"); !reflect.DeepEqual(v.Values(), []string{"a", "b", "c"}) {
		t.Fatalf("values should append in order, got %q", v.Values())
	}

	o.Add("x", Flag())
	o.Add("x", Single("1"))
	if v, _ := o.Get("x"); v.Kind() != OptionSingle || v.Value() != "1" {
		t.Fatalf("valued occurrence should replace a flag, got %v %q", v.Kind(), v.Value())
	}
}

func TestOptions_SetKeepsPositionAndDelete(t *testing.T) {
	o := DecodeOptions(`a,b="1",c`)
	o.Set("b", Single("2"))
	o.Set("d", Flag())
	if got := o.String(); got != `a,b="2",c,d` {
		t.Fatalf("unexpected render: %s", got)
	}
	if !o.Delete("b") {
		t.Fatalf("Delete(b) should report presence")
	}
	if o.Delete("b") {
		t.Fatalf("second Delete(b) should report absence")
	}
	if _, ok := o.Get("b"); ok {
		t.Fatalf("b should be gone")
	}
	if got := o.String(); got != "a,c,d" {
		t.Fatalf("unexpected render after delete: %s", got)
	}
	o.Set("c", OptionValue{})
	if o.Has("c") {
		t.Fatalf("setting an absent value should delete the option")
	}
}

func TestOptions_Render(t *testing.T) {
	o := NewOptions()
	o.Set("no-pty", Flag())
	o.Set("from", Many("a.com", "b.com"))
	o.Set("command", Single("echo hi"))
	want := `no-pty,from="a.com",from="b.com",command="echo hi"`
	if got := o.String(); got != want {
		t.Fatalf("render = %s, want %s", got, want)
	}
	var nilOpts *Options
	if nilOpts.String() != "" || nilOpts.Len() != 0 {
		t.Fatalf("nil options should render empty")
	}
}

func TestMany_Normalizes(t *testing.T) {
	if Many().Kind() != OptionFlag {
		t.Fatalf("Many() should be a flag")
	}
	if v := Many("x"); v.Kind() != OptionSingle || v.Value() != "x" {
		t.Fatalf("Many(x) should be single")
	}
}
