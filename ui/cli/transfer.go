// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/toeirei/authkeys/internal/authkeys"
	"github.com/toeirei/authkeys/internal/backup"
	"github.com/toeirei/authkeys/internal/i18n"
)

// exportFile is the structured form of a key file written by export.
type exportFile struct {
	Path     string           `json:"path" yaml:"path"`
	Format   string           `json:"format" yaml:"format"`
	Keys     []exportKey      `json:"keys" yaml:"keys"`
	Rejected []exportRejected `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

type exportKey struct {
	Index    int            `json:"index" yaml:"index"`
	Format   string         `json:"format" yaml:"format"`
	Type     string         `json:"type,omitempty" yaml:"type,omitempty"`
	Blob     string         `json:"blob,omitempty" yaml:"blob,omitempty"`
	Bits     int            `json:"bits,omitempty" yaml:"bits,omitempty"`
	Exponent int            `json:"exponent,omitempty" yaml:"exponent,omitempty"`
	Modulus  string         `json:"modulus,omitempty" yaml:"modulus,omitempty"`
	Comment  string         `json:"comment,omitempty" yaml:"comment,omitempty"`
	Options  []exportOption `json:"options,omitempty" yaml:"options,omitempty"`
}

type exportOption struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

type exportRejected struct {
	Line  int    `json:"line" yaml:"line"`
	Text  string `json:"text" yaml:"text"`
	Error string `json:"error" yaml:"error"`
}

func toExport(f *authkeys.File) exportFile {
	out := exportFile{Path: f.Path(), Format: f.Format().String(), Keys: []exportKey{}}
	for i, k := range f.Keys() {
		ek := exportKey{Index: i, Format: k.Format().String(), Comment: k.Comment()}
		switch kk := k.(type) {
		case *authkeys.ModernKey:
			ek.Type, ek.Blob = kk.Type, kk.Blob
		case *authkeys.LegacyKey:
			ek.Bits, ek.Exponent, ek.Modulus = kk.Bits, kk.Exponent, kk.Modulus
		}
		opts := k.Options()
		for _, name := range opts.Names() {
			v, _ := opts.Get(name)
			ek.Options = append(ek.Options, exportOption{Name: name, Values: v.Values()})
		}
		out.Keys = append(out.Keys, ek)
	}
	for _, le := range f.Rejected() {
		out.Rejected = append(out.Rejected, exportRejected{Line: le.Line, Text: le.Text, Error: le.Err.Error()})
	}
	return out
}

// newExportCmd dumps the parsed file as YAML or JSON.
func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the keys as YAML or JSON",
		Long: `Write every key with its fields and options as structured data, along
with the lines that were skipped while reading.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			data := toExport(f)

			var raw []byte
			switch output {
			case "yaml", "yml":
				raw, err = yaml.Marshal(data)
			case "json":
				raw, err = json.MarshalIndent(data, "", "  ")
				raw = append(raw, '\n')
			default:
				return fmt.Errorf("unsupported output format %q (use yaml or json)", output)
			}
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", output, err)
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format (yaml, json)")
	return cmd
}

// newBackupCmd writes a zstd archive of the file.
func newBackupCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "backup [archive]",
		Short: "Write a compressed backup of the file",
		Long: `Compress the key file with zstd. Without an argument the archive is
named after the file and the current time and placed in backup.dir (or next
to the file). Use --list to show existing backups.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := appConfig.File
			out := cmd.OutOrStdout()
			if list {
				archives, err := backup.List(path, appConfig.Backup.Dir)
				if err != nil {
					return err
				}
				for _, a := range archives {
					fmt.Fprintln(out, a)
				}
				return nil
			}

			var archive string
			var err error
			if len(args) == 1 {
				archive = args[0]
				err = backup.WriteArchive(path, archive)
			} else {
				archive, err = backup.Write(path, appConfig.Backup.Dir, now())
			}
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Fprintln(out, i18n.T("cli.backup_written", archive))
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list existing backups, oldest first")
	return cmd
}

// newRestoreCmd replaces the file with the content of an archive.
func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore the file from a backup",
		Long: `Replace the key file with the content of a backup written by 'backup'.
A backup of the current file is taken first when backup.enabled is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive := args[0]
			if err := backupBeforeWrite(cmd, appConfig.File); err != nil {
				return err
			}
			if err := backup.Restore(archive, appConfig.File); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("restore.done", appConfig.File, archive))
			return nil
		},
	}
}
