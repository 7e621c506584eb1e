// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package authkeys

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
	"github.com/toeirei/authkeys/internal/logging"
)

// File is an authorized_keys file held in memory. It owns the key slice;
// callers mutate keys through the pointers returned by Keys and persist the
// result with Save.
//
// A File is not safe for concurrent use.
type File struct {
	path     string
	format   Format
	keys     []Key
	rejected []*LineError
	prefixes []string
	logger   *clog.Logger
}

// Option configures how a File is read.
type Option func(*File)

// WithKeyTypePrefixes replaces the first-field prefixes that identify a
// modern key. The default is DefaultKeyTypePrefixes.
func WithKeyTypePrefixes(prefixes ...string) Option {
	return func(f *File) {
		if len(prefixes) > 0 {
			f.prefixes = append([]string(nil), prefixes...)
		}
	}
}

// WithLogger sets the logger that receives warnings about skipped lines.
func WithLogger(l *clog.Logger) Option {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

func newFile(path string, opts []Option) *File {
	f := &File{
		path:     path,
		prefixes: DefaultKeyTypePrefixes,
		logger:   logging.L,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Open reads and parses the key file at path. Lines that cannot be parsed are
// logged and skipped; only a failure to open or read the file is an error.
func Open(path string, opts ...Option) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	defer func() { _ = fh.Close() }()

	f := newFile(path, opts)
	if err := f.read(fh); err != nil {
		return nil, err
	}
	return f, nil
}

// Parse reads key lines from r. name is used as the file path in
// diagnostics and as the target of Save.
func Parse(r io.Reader, name string, opts ...Option) (*File, error) {
	f := newFile(name, opts)
	if err := f.read(r); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	// Legacy moduli and option lists can be long.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, err := parseLine(line, f.prefixes)
		if err == nil && f.format != FormatUnknown && key.Format() != f.format {
			err = fmt.Errorf("%w: %s line in a %s file", ErrFormatMismatch, key.Format(), f.format)
		}
		if err != nil {
			f.reject(lineNo, line, err)
			continue
		}
		if f.format == FormatUnknown {
			f.format = key.Format()
		}
		f.keys = append(f.keys, key)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", f.path, err)
	}
	return nil
}

func (f *File) reject(lineNo int, line string, err error) {
	le := &LineError{Path: f.path, Line: lineNo, Text: line, Err: err}
	f.rejected = append(f.rejected, le)
	f.logger.Warn("skipping invalid key line", "file", f.path, "line", lineNo, "err", err)
}

// Path returns the file the keys were read from and are saved to.
func (f *File) Path() string { return f.path }

// Format returns the format shared by every key in the file, or
// FormatUnknown when no key was parsed.
func (f *File) Format() Format { return f.format }

// Keys returns the parsed keys in file order. The slice is the file's own;
// mutate the keys, not the slice.
func (f *File) Keys() []Key { return f.keys }

// Key returns the key at index i.
func (f *File) Key(i int) (Key, error) {
	if i < 0 || i >= len(f.keys) {
		return nil, fmt.Errorf("no key at index %d (file has %d)", i, len(f.keys))
	}
	return f.keys[i], nil
}

// Rejected returns the lines skipped during the read, in file order.
func (f *File) Rejected() []*LineError { return f.rejected }

// Render returns the file content: one line per key, each ending in a newline.
// Comment and blank lines of the original file are not reproduced.
func (f *File) Render() string {
	var sb strings.Builder
	_, _ = f.WriteTo(&sb)
	return sb.String()
}

// WriteTo writes the rendered file to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, k := range f.keys {
		n, err := io.WriteString(w, k.String()+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Save overwrites the backing file with the rendered keys. The write is not
// atomic; an error part way through can leave a truncated file.
func (f *File) Save() error {
	return f.SaveAs(f.path)
}

// SaveAs writes the rendered keys to path, keeping the permissions of an
// existing file and using 0600 for a new one. Nothing is written when a key
// fails Validate.
func (f *File) SaveAs(path string) error {
	for i, k := range f.keys {
		if err := Validate(k, f.prefixes...); err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
	}
	mode := fs.FileMode(0o600)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(f.Render()), mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
