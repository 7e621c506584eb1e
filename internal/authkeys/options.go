// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"strings"
)

// OptionKind tags the shape of an OptionValue.
type OptionKind int

const (
	// OptionAbsent is the zero value, returned for unknown option names.
	OptionAbsent OptionKind = iota
	// OptionFlag is a bare option such as no-pty.
	OptionFlag
	// OptionSingle is a name=value option.
	OptionSingle
	// OptionMany is an option given more than once with values.
	OptionMany
)

func (k OptionKind) String() string {
	switch k {
	case OptionFlag:
		return "flag"
	case OptionSingle:
		return "single"
	case OptionMany:
		return "many"
	default:
		return "absent"
	}
}

// OptionValue is the value of one authorized_keys option. Values are the raw
// text found between the quotes; escapes are not interpreted.
type OptionValue struct {
	kind   OptionKind
	values []string
}

// Flag returns a value-less option.
func Flag() OptionValue { return OptionValue{kind: OptionFlag} }

// Single returns an option holding one value.
func Single(v string) OptionValue { return OptionValue{kind: OptionSingle, values: []string{v}} }

// Many returns an option holding an ordered list of values. With exactly one
// value it is equivalent to Single, with none to Flag.
func Many(vs ...string) OptionValue {
	switch len(vs) {
	case 0:
		return Flag()
	case 1:
		return Single(vs[0])
	}
	return OptionValue{kind: OptionMany, values: append([]string(nil), vs...)}
}

// Kind reports the shape of the value.
func (v OptionValue) Kind() OptionKind { return v.kind }

// Value returns the first value, or "" for flags and absent options.
func (v OptionValue) Value() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

// Values returns a copy of all values in order.
func (v OptionValue) Values() []string {
	return append([]string(nil), v.values...)
}

// tokens renders the value as option tokens for name.
func (v OptionValue) tokens(name string) []string {
	switch v.kind {
	case OptionFlag:
		return []string{name}
	case OptionSingle, OptionMany:
		out := make([]string, 0, len(v.values))
		for _, val := range v.values {
			out = append(out, name+`="`+val+`"`)
		}
		return out
	}
	return nil
}

// Options is an ordered mapping from option name to value. The order in
// which names were first added is the order they are rendered in.
type Options struct {
	names  []string
	values map[string]OptionValue
}

// NewOptions returns an empty option set.
func NewOptions() *Options {
	return &Options{values: make(map[string]OptionValue)}
}

// DecodeOptions parses the comma separated options field of a key line.
func DecodeOptions(field string) *Options {
	o := NewOptions()
	for _, tok := range splitOptions(field) {
		name, value, hasValue := strings.Cut(tok, "=")
		if !hasValue {
			o.Add(name, Flag())
			continue
		}
		o.Add(name, Single(unquote(value)))
	}
	return o
}

// Len returns the number of distinct option names.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.names)
}

// Names returns the option names in render order.
func (o *Options) Names() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.names...)
}

// Get looks up an option by its case-sensitive name.
func (o *Options) Get(name string) (OptionValue, bool) {
	if o == nil {
		return OptionValue{}, false
	}
	v, ok := o.values[name]
	return v, ok
}

// Has reports whether name is set.
func (o *Options) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Set replaces the value of name. A new name is appended to the order, an
// existing one keeps its position. Setting an absent value deletes name.
func (o *Options) Set(name string, v OptionValue) {
	if v.kind == OptionAbsent {
		o.Delete(name)
		return
	}
	if o.values == nil {
		o.values = make(map[string]OptionValue)
	}
	if _, ok := o.values[name]; !ok {
		o.names = append(o.names, name)
	}
	o.values[name] = v
}

// Add merges another occurrence of name the way a repeated option on a key
// line is merged: values accumulate into a list in order, repeated flags
// collapse, and a bare occurrence of a valued option is ignored.
func (o *Options) Add(name string, v OptionValue) {
	cur, ok := o.Get(name)
	if !ok || cur.kind == OptionFlag {
		if ok && v.kind == OptionFlag {
			return
		}
		o.Set(name, v)
		return
	}
	if v.kind != OptionSingle && v.kind != OptionMany {
		return
	}
	merged := append(cur.Values(), v.values...)
	o.values[name] = OptionValue{kind: OptionMany, values: merged}
}

// Delete removes name and reports whether it was present.
func (o *Options) Delete(name string) bool {
	if o == nil {
		return false
	}
	if _, ok := o.values[name]; !ok {
		return false
	}
	delete(o.values, name)
	for i, n := range o.names {
		if n == name {
			o.names = append(o.names[:i], o.names[i+1:]...)
			break
		}
	}
	return true
}

// String renders the options field, or "" when there are no options.
func (o *Options) String() string {
	if o.Len() == 0 {
		return ""
	}
	var toks []string
	for _, name := range o.names {
		toks = append(toks, o.values[name].tokens(name)...)
	}
	return strings.Join(toks, ",")
}
