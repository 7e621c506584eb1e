// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/toeirei/authkeys/internal/i18n"
	"github.com/toeirei/authkeys/internal/tui"
	"golang.org/x/term"
)

// Replaced in tests.
var (
	clipboardWrite = clipboard.WriteAll
	isInteractive  = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	}
)

// newBrowseCmd starts the interactive browser.
func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the keys interactively",
		Long: `Open a read-only terminal view of the file. Move with the arrow keys,
filter with '/', copy the selected line with 'c' and quit with 'q'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractive() {
				return errors.New(i18n.T("browse.no_terminal"))
			}
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			return tui.Run(f)
		},
	}
}

// newCopyCmd copies one rendered key line to the clipboard.
func newCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <index>",
		Short: "Copy a key line to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			i, k, err := keyAt(f, args[0])
			if err != nil {
				return err
			}
			if err := clipboardWrite(k.String()); err != nil {
				return fmt.Errorf("could not write to the clipboard: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("copy.done", i))
			return nil
		},
	}
}
