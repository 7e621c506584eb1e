// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/authkeys/internal/authkeys"
	"github.com/toeirei/authkeys/internal/i18n"
)

// newOptionCmd groups the commands that read and edit key options.
func newOptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Read and edit the options of a key (get, set, delete)",
		Long: `The 'option' command group works on the options field of a single key:
  - get prints the value or values of an option
  - set adds or replaces an option
  - delete removes an option`,
	}
	cmd.AddCommand(newOptionGetCmd(), newOptionSetCmd(), newOptionDeleteCmd())
	return cmd
}

func newOptionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <index> <name>",
		Short: "Print the value of an option",
		Long: `Print the value of option <name> on the key at <index>. A repeated
option prints one value per line; a flag option prints its name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			_, k, err := keyAt(f, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			name := args[1]
			v, ok := k.Options().Get(name)
			if !ok {
				fmt.Fprintln(out, i18n.T("option.not_set", name))
				return nil
			}
			if v.Kind() == authkeys.OptionFlag {
				fmt.Fprintln(out, name)
				return nil
			}
			for _, val := range v.Values() {
				fmt.Fprintln(out, val)
			}
			return nil
		},
	}
}

func newOptionSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <index> <name> [value...]",
		Short: "Add or replace an option",
		Long: `Set option <name> on the key at <index> and save the file. Without a
value the option becomes a flag (e.g. no-pty); several values produce a
repeated option (e.g. from="a",from="b").`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			i, k, err := keyAt(f, args[0])
			if err != nil {
				return err
			}
			name := args[1]
			k.Options().Set(name, authkeys.Many(args[2:]...))
			if err := authkeys.Validate(k, appConfig.Parse.KeyTypePrefixes...); err != nil {
				return fmt.Errorf("%s: %w", i18n.T("option.invalid", name, i), err)
			}
			if err := saveKeyFile(cmd, f); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("option.set", name, i))
			return nil
		},
	}
}

func newOptionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <index> <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an option",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			i, k, err := keyAt(f, args[0])
			if err != nil {
				return err
			}
			name := args[1]
			if !k.Options().Delete(name) {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("option.not_set", name))
				return nil
			}
			if err := saveKeyFile(cmd, f); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("option.deleted", name, i))
			return nil
		},
	}
}
