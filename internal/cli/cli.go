// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package cli wires up the Keywarden command-line interface using
// Cobra. It defines the root command, which launches the interactive
// TUI, and the non-interactive subcommands for scripting: setup,
// status, value operations, backup/restore and the audit log.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/config"
	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/i18n"
	"github.com/keywarden/keywarden/internal/logging"
	"github.com/keywarden/keywarden/internal/tui"
	"github.com/keywarden/keywarden/internal/vaultkey"
)

var (
	cfgFile   string
	appConfig config.Config

	// svc is the encryption service shared by all commands. It is set
	// by setupServices; tests may substitute a fake before calling a
	// command's RunE directly.
	svc vaultkey.Service
)

// Execute builds the command tree and runs it. The version string is
// injected by main, which gets it from the linker.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// newRootCmd creates a fresh root command. Tests create their own
// instances so state does not leak between runs.
func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywarden",
		Short: "Keywarden keeps shared workspace values encrypted at rest.",
		Long: `Keywarden encrypts workspace values with a per-workspace master key.
The key lives in the system keychain; the vault database only ever
holds ciphertext. Teammates join a workspace by importing the master
key that was shared with them.

Running without a subcommand launches the interactive TUI.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(svc, appConfig.Workspace)
		},
	}
	cmd.Version = version

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is keywarden.yaml in the user config dir)")
	cmd.PersistentFlags().String("workspace", "default", "workspace name")
	cmd.PersistentFlags().String("vault_path", "", "vault database file (default is under the user config dir)")
	cmd.PersistentFlags().String("language", "en", `UI language ("en", "de")`)
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		newSetupCmd(),
		newStatusCmd(),
		newSetCmd(),
		newGetCmd(),
		newListCmd(),
		newDeleteCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newAuditCmd(),
	)
	return cmd
}

// setupServices loads the configuration and initializes logging, i18n,
// the vault database and the encryption service. It runs before every
// command.
func setupServices(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfig[config.Config](cmd, config.Defaults(), &cfgFile)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	appConfig = c

	logging.SetDebug(c.Debug)
	i18n.Init(c.Language)

	// On first run, persist the effective settings so configuration is
	// discoverable for the user.
	if cfgFile == "" {
		if path, pathErr := config.UserConfigPath(); pathErr == nil {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				if writeErr := config.WriteConfigFile(&c, false); writeErr != nil {
					logging.Debugf("could not write default config file: %v", writeErr)
				}
			}
		}
	}

	dsn := c.VaultPath
	if dsn == "" {
		dsn, err = config.DefaultVaultPath(c.Workspace)
		if err != nil {
			return err
		}
	}
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0700); err != nil {
			return fmt.Errorf("could not create vault directory: %w", err)
		}
	}
	if err := db.InitDB(dsn); err != nil {
		return err
	}

	s, err := vaultkey.New(c.Workspace)
	if err != nil {
		return err
	}
	svc = s

	logging.Debugf("workspace %q, vault %s", c.Workspace, dsn)
	return nil
}

// newStatusCmd reports the workspace, vault location and master key
// state.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show workspace and master key status",
		RunE: func(cmd *cobra.Command, args []string) error {
			vaultPath := appConfig.VaultPath
			if vaultPath == "" {
				vaultPath, _ = config.DefaultVaultPath(appConfig.Workspace)
			}
			fmt.Printf(i18n.T("cli.status_workspace")+"\n", appConfig.Workspace)
			fmt.Printf(i18n.T("cli.status_vault")+"\n", vaultPath)

			if svc.ShowMasterKeySetup() {
				fmt.Println(i18n.T("cli.status_not_set_up"))
				fmt.Println(i18n.T("cli.no_key"))
				return nil
			}
			fmt.Println(i18n.T("cli.status_stored"))
			if fp, err := svc.Fingerprint(); err == nil {
				fmt.Printf(i18n.T("cli.fingerprint")+"\n", fp)
			}
			return nil
		},
	}
}
