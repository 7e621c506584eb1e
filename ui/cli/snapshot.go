// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/toeirei/authkeys/internal/authkeys"
	"github.com/toeirei/authkeys/internal/db"
	"github.com/toeirei/authkeys/internal/i18n"
	"github.com/toeirei/authkeys/internal/logging"
)

const shortIDLen = 8

// openStore connects to the configured snapshot database.
func openStore(ctx context.Context) (*db.Store, error) {
	store, err := db.Open(ctx, appConfig.Database.Type, appConfig.Database.Dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open snapshot database: %w", err)
	}
	return store, nil
}

func closeStore(store *db.Store) {
	if err := store.Close(); err != nil {
		logging.Warnf("closing snapshot database: %v", err)
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// newSnapshotCmd groups the database backed history commands.
func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record and restore states of the file (save, list, show, restore, delete)",
		Long: `The 'snapshot' command group keeps a history of the key file in the
configured database:
  - save records the current state
  - list shows the recorded states of the file
  - show prints a recorded state
  - restore writes a recorded state back to its file
  - delete removes a recorded state

Snapshot IDs may be shortened to any unique prefix.`,
	}
	cmd.AddCommand(
		newSnapshotSaveCmd(),
		newSnapshotListCmd(),
		newSnapshotShowCmd(),
		newSnapshotRestoreCmd(),
		newSnapshotDeleteCmd(),
	)
	return cmd
}

func newSnapshotSaveCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Record the current state of the file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openKeyFile()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			snap, err := store.Save(cmd.Context(), f, note)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("snapshot.saved", shortID(snap.ID), snap.KeyCount))
			return nil
		},
	}
	cmd.Flags().StringVarP(&note, "note", "m", "", "note stored with the snapshot")
	return cmd
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the snapshots of the file, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			rows, err := store.List(cmd.Context(), appConfig.File)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, i18n.T("snapshot.none", appConfig.File))
				return nil
			}

			var data [][]string
			for _, r := range rows {
				data = append(data, []string{
					shortID(r.ID),
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Format,
					strconv.Itoa(r.KeyCount),
					r.Note,
				})
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "CREATED", "FORMAT", "KEYS", "NOTE").
				Rows(data...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})
			fmt.Fprintln(out, t.String())
			return nil
		},
	}
}

func newSnapshotShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a recorded state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			snap, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s %s %s\n", snap.ID, snap.Path, snap.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if snap.Note != "" {
				fmt.Fprintf(out, "# %s\n", snap.Note)
			}
			_, err = fmt.Fprint(out, snap.Content)
			return err
		},
	}
}

func newSnapshotRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Write a recorded state back to its file",
		Long: `Write the keys of a snapshot back to the file they were recorded from.
A backup of the current file is taken first when backup.enabled is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			snap, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f, err := authkeys.Parse(strings.NewReader(snap.Content), snap.Path,
				authkeys.WithKeyTypePrefixes(appConfig.Parse.KeyTypePrefixes...),
				authkeys.WithLogger(logging.L))
			if err != nil {
				return err
			}
			if err := saveKeyFile(cmd, f); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("snapshot.restored", shortID(snap.ID), snap.Path))
			return nil
		},
	}
}

func newSnapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a recorded state",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			snap, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), snap.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("snapshot.deleted", shortID(snap.ID)))
			return nil
		},
	}
}
