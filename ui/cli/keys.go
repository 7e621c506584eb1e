// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/toeirei/authkeys/internal/authkeys"
	"github.com/toeirei/authkeys/internal/i18n"
	"github.com/toeirei/authkeys/internal/logging"
	"github.com/toeirei/authkeys/internal/sshkey"
	"golang.org/x/term"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// newListCmd lists the keys of the file as a table.
func newListCmd() *cobra.Command {
	var showFingerprint bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the keys of the file",
		Long: `Display every key of the file with its index, format, type, comment
and options. Use --fingerprint to decode modern keys and show their SHA256
fingerprints.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(f.Keys()) == 0 {
				fmt.Fprintln(out, i18n.T("list.empty", f.Path()))
				return nil
			}

			headers := []string{
				i18n.T("list.header_index"),
				i18n.T("list.header_format"),
				i18n.T("list.header_type"),
				i18n.T("list.header_comment"),
				i18n.T("list.header_options"),
			}
			if showFingerprint {
				headers = append(headers, i18n.T("list.header_fingerprint"))
			}

			maxCell := cellWidth(out, len(headers))
			var rows [][]string
			var warnings []string
			for i, k := range f.Keys() {
				row := []string{
					strconv.Itoa(i),
					k.Format().String(),
					keyLabel(k),
					truncate(k.Comment(), maxCell),
					truncate(k.Options().String(), maxCell),
				}
				if showFingerprint {
					fp, warning := fingerprint(k)
					row = append(row, fp)
					if warning != "" {
						warnings = append(warnings, i18n.T("warn.weak_algorithm", i, warning))
					}
				}
				rows = append(rows, row)
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers(headers...).
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})
			fmt.Fprintln(out, t.String())
			for _, w := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showFingerprint, "fingerprint", false, "show SHA256 fingerprints of modern keys")
	return cmd
}

// fingerprint returns the fingerprint column for k and a warning about its
// algorithm, if any.
func fingerprint(k authkeys.Key) (string, string) {
	mk, ok := k.(*authkeys.ModernKey)
	if !ok {
		return "-", sshkey.LegacyWarning
	}
	info, err := sshkey.Describe(mk.Type, mk.Blob)
	if err != nil {
		logging.Debugf("cannot decode key %s: %v", mk.Type, err)
		return "?", ""
	}
	return info.Fingerprint, info.Warning
}

// cellWidth returns the widest a free-text cell may be when out is a
// terminal, or 0 for no limit.
func cellWidth(out io.Writer, columns int) int {
	file, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	// index, format and type are narrow; split the rest between free text.
	n := (width - 30) / (columns - 2)
	if n < 12 {
		n = 12
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// newRenderCmd prints the file in canonical form.
func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "render",
		Aliases: []string{"cat"},
		Short:   "Print the file in canonical form",
		Long: `Print every key as it would be written back to disk: options first,
quoted and comma separated, followed by the key fields and the comment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			_, err = f.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

// newCheckCmd reports the lines that were skipped while reading the file.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report lines that are not valid keys",
		Long: `Read the file and print every line that was skipped, with its line
number and reason. Exits with an error when any line was skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rejected := f.Rejected()
			if len(rejected) == 0 {
				fmt.Fprintln(out, i18n.T("check.ok", f.Path(), len(f.Keys())))
				return nil
			}
			for _, le := range rejected {
				fmt.Fprintf(out, "%v\n    %s\n", le, le.Text)
			}
			return errors.New(i18n.T("check.problems", f.Path(), len(rejected)))
		},
	}
}

// newSetCmd changes one field of a key and saves the file.
func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <index> <field> <value>",
		Short: "Change a field of a key",
		Long: `Change one field of the key at <index> and save the file.

Legacy keys: bits (keylen), exponent, key (modulus), comment (email).
Modern keys: type (encryption), key, comment (email).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			i, k, err := keyAt(f, args[0])
			if err != nil {
				return err
			}
			field, value := args[1], args[2]
			if err := setField(k, field, value); err != nil {
				return err
			}
			if err := authkeys.Validate(k, appConfig.Parse.KeyTypePrefixes...); err != nil {
				return fmt.Errorf("%s: %w", i18n.T("set.invalid", field, i), err)
			}
			if err := saveKeyFile(cmd, f); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("set.done", field, i))
			return nil
		},
	}
}

// setField assigns value to the named field of k.
func setField(k authkeys.Key, field, value string) error {
	switch field {
	case "comment":
		k.SetComment(value)
		return nil
	case "email":
		k.SetEmail(value)
		return nil
	}

	switch kk := k.(type) {
	case *authkeys.LegacyKey:
		switch field {
		case "bits", "keylen":
			n, err := positive(value)
			if err != nil {
				return err
			}
			kk.Bits = n
			return nil
		case "exponent":
			n, err := positive(value)
			if err != nil {
				return err
			}
			kk.Exponent = n
			return nil
		case "key", "modulus":
			kk.Modulus = value
			return nil
		}
	case *authkeys.ModernKey:
		switch field {
		case "type", "encryption":
			kk.Type = value
			return nil
		case "key":
			kk.Blob = value
			return nil
		}
	}
	return errors.New(i18n.T("set.unknown_field", field, k.Format()))
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", authkeys.ErrBadNumber, s)
	}
	return n, nil
}
