// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, configuration loading and the helpers
// shared by the subcommands.

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/authkeys/buildvars"
	"github.com/toeirei/authkeys/internal/authkeys"
	"github.com/toeirei/authkeys/internal/backup"
	"github.com/toeirei/authkeys/internal/config"
	"github.com/toeirei/authkeys/internal/i18n"
	"github.com/toeirei/authkeys/internal/logging"
)

const modulePath = "github.com/toeirei/authkeys"

var appConfig config.Config

// now is replaced in tests to get stable backup names.
var now = time.Now

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), configPath)
	// Running without any config file is the normal case.
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		logging.Debugf("no config file found, using defaults")
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if err := logging.SetLevel(appConfig.Log.Level); err != nil {
		return err
	}
	i18n.Init(appConfig.Language)

	if appConfig.File == "" {
		return errors.New("no key file configured; use --file")
	}
	// Snapshots are keyed by path, so always use the absolute form.
	if abs, err := filepath.Abs(appConfig.File); err == nil {
		appConfig.File = abs
	}
	if len(appConfig.Parse.KeyTypePrefixes) == 0 {
		appConfig.Parse.KeyTypePrefixes = authkeys.DefaultKeyTypePrefixes
	}
	return nil
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates and configures a new root cobra command. Every call
// returns a fresh command tree so tests can run commands in isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authkeys",
		Short: "Inspect and edit SSH authorized_keys files.",
		Long: `authkeys reads an authorized_keys file in either the legacy RSA1
layout or the modern "type blob comment" layout, lets you list, edit and
export its keys and writes the result back in canonical form.

Comment and blank lines are not preserved when a file is saved.`,
		PersistentPreRunE: setupDefaultServices,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	v, c, d := resolveBuildVersion(nil)
	cmd.Version = compositeVersion(v, c, d)

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file")
	flags.StringP("file", "f", "", "authorized_keys file (default ~/.ssh/authorized_keys)")
	flags.String("language", "en", `output language ("en", "de")`)
	flags.String("log.level", "info", "log level (debug, info, warn, error)")
	flags.StringSlice("parse.key_type_prefixes", nil, "first-field prefixes that mark a modern key")
	flags.Bool("backup.enabled", false, "write a compressed backup before every save")
	flags.String("backup.dir", "", "backup directory (default: next to the key file)")
	flags.String("database.type", "sqlite", "snapshot database type (sqlite, postgres, mysql)")
	flags.String("database.dsn", "./authkeys.db", "snapshot database connection string (DSN)")

	cmd.AddCommand(
		newListCmd(),
		newRenderCmd(),
		newCheckCmd(),
		newSetCmd(),
		newOptionCmd(),
		newExportCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newSnapshotCmd(),
		newBrowseCmd(),
		newCopyCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

func compositeVersion(v, c, d string) string {
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

// resolveBuildVersion prefers module build info over the linker variables.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := buildvars.Commit
	resolvedDate := buildvars.BuildDate

	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record our version as a dependency.
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// Without any version, the commit from ldflags still identifies the build.
	if resolvedVersion == "dev" && buildvars.Commit != "dev" && buildvars.Commit != "" {
		resolvedVersion = buildvars.Commit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}

// openKeyFile opens the configured key file. Failing to open it ends the
// command.
func openKeyFile() (*authkeys.File, error) {
	f, err := authkeys.Open(appConfig.File,
		authkeys.WithKeyTypePrefixes(appConfig.Parse.KeyTypePrefixes...),
		authkeys.WithLogger(logging.L))
	if err != nil {
		return nil, errors.New(i18n.T("cli.error_open", err))
	}
	return f, nil
}

// saveKeyFile writes f back to its path, taking a backup first when backups
// are enabled. Lines skipped during the read are not written back, so they
// are listed on stderr first.
func saveKeyFile(cmd *cobra.Command, f *authkeys.File) error {
	if rejected := f.Rejected(); len(rejected) > 0 {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, i18n.T("cli.dropping_rejected", len(rejected), f.Path()))
		for _, r := range rejected {
			fmt.Fprintf(errOut, "  %d: %s (%v)\n", r.Line, r.Text, r.Err)
		}
	}
	if err := backupBeforeWrite(cmd, f.Path()); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return errors.New(i18n.T("cli.error_save", err))
	}
	logging.Debugf("saved %d keys to %s", len(f.Keys()), f.Path())
	fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.saved", f.Path()))
	return nil
}

// backupBeforeWrite archives path when backups are enabled and the file
// exists.
func backupBeforeWrite(cmd *cobra.Command, path string) error {
	if !appConfig.Backup.Enabled {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	archive, err := backup.Write(path, appConfig.Backup.Dir, now())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.backup_written", archive))
	return nil
}

// keyAt resolves a key index argument.
func keyAt(f *authkeys.File, arg string) (int, authkeys.Key, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, nil, errors.New(i18n.T("cli.error_index", arg))
	}
	k, err := f.Key(i)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", i18n.T("cli.error_index", arg), err)
	}
	return i, k, nil
}

// keyLabel is the short type column of a key.
func keyLabel(k authkeys.Key) string {
	switch kk := k.(type) {
	case *authkeys.ModernKey:
		return kk.Type
	case *authkeys.LegacyKey:
		return "rsa1 " + strconv.Itoa(kk.Bits)
	}
	return "?"
}
