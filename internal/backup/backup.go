// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup keeps Zstandard-compressed copies of a key file so that a
// save can be undone.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Ext is the suffix of every backup archive.
const Ext = ".zst"

const stampLayout = "20060102T150405.000000000"

// Name returns the archive name for a backup of path taken at t.
func Name(path string, t time.Time) string {
	return filepath.Base(path) + "." + t.UTC().Format(stampLayout) + Ext
}

// Write compresses the file at path into dir, or next to path when dir is
// empty, and returns the archive path.
func Write(path, dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not create backup directory %s: %w", dir, err)
	}
	archive := filepath.Join(dir, Name(path, now))
	if err := WriteArchive(path, archive); err != nil {
		return "", err
	}
	return archive, nil
}

// WriteArchive compresses the file at path into archive. An existing archive
// is never overwritten.
func WriteArchive(path, archive string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = src.Close() }()

	out, err := os.OpenFile(archive, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("could not create backup file: %w", err)
	}
	enc, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	if _, err := io.Copy(enc, src); err != nil {
		_ = enc.Close()
		_ = out.Close()
		return fmt.Errorf("could not compress %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("could not finish zstd stream: %w", err)
	}
	return out.Close()
}

// Read decompresses an archive written by Write.
func Read(archive string) ([]byte, error) {
	file, err := os.Open(archive)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("could not decompress %s: %w", archive, err)
	}
	return data, nil
}

// Restore replaces dest with the content of archive, keeping the mode of an
// existing dest.
func Restore(archive, dest string) error {
	data, err := Read(archive)
	if err != nil {
		return err
	}
	mode := fs.FileMode(0o600)
	if st, err := os.Stat(dest); err == nil {
		mode = st.Mode().Perm()
	}
	return os.WriteFile(dest, data, mode)
}

// List returns the backups of path found in dir (or next to path), oldest
// first.
func List(path, dir string) ([]string, error) {
	if dir == "" {
		dir = filepath.Dir(path)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, Ext) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	// The timestamp layout sorts lexically.
	sort.Strings(out)
	return out, nil
}
