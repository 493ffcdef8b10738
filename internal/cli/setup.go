// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/keywarden/keywarden/internal/i18n"
	"github.com/keywarden/keywarden/internal/tui"
)

// newSetupCmd creates the 'setup' command. Without flags it runs the
// interactive setup dialog; --generate and --import cover scripted
// provisioning.
func newSetupCmd() *cobra.Command {
	var generate bool
	var importKey string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Set up the workspace master key",
		Long: `Sets up the master key for the current workspace.

Without flags, an interactive dialog offers to generate a fresh key or
to import one shared by a teammate. With --generate a new key is
created and stored immediately; the key is printed once so it can be
saved. With --import the given key (or one read from a hidden prompt)
is validated and stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !svc.ShowMasterKeySetup() {
				fmt.Println(i18n.T("cli.key_already_stored"))
				return nil
			}
			switch {
			case generate:
				return runGenerateSetup()
			case cmd.Flags().Changed("import"):
				return runImportSetup(importKey)
			default:
				return tui.RunSetup(svc)
			}
		},
	}

	cmd.Flags().BoolVar(&generate, "generate", false, "generate and store a new master key without the dialog")
	cmd.Flags().StringVar(&importKey, "import", "", "import the given master key (empty value prompts for hidden input)")
	return cmd
}

// runGenerateSetup generates a key, stores it and prints it exactly
// once.
func runGenerateSetup() error {
	if err := svc.GenerateMasterKey(); err != nil {
		return err
	}
	key := svc.MasterKeyForDisplay()
	if err := svc.StoreMasterKey(key); err != nil {
		return err
	}
	fmt.Println(i18n.T("cli.generate_done"))
	fmt.Println("  " + key)
	if fp, err := svc.Fingerprint(); err == nil {
		fmt.Printf(i18n.T("cli.fingerprint")+"\n", fp)
	}
	return nil
}

// runImportSetup validates and stores a key shared by a teammate. The
// key is read from a hidden prompt when not passed on the command line
// so it does not end up in the shell history.
func runImportSetup(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("no master key given and stdin is not a terminal")
		}
		fmt.Print(i18n.T("cli.enter_master_key"))
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("could not read master key: %w", err)
		}
		key = strings.TrimSpace(string(raw))
	}
	if key == "" {
		return errors.New(i18n.T("setup.import_empty"))
	}

	if err := svc.ImportMasterKey(key); err != nil {
		return err
	}
	fmt.Println(i18n.T("cli.import_done"))
	if fp, err := svc.Fingerprint(); err == nil {
		fmt.Printf(i18n.T("cli.fingerprint")+"\n", fp)
	}
	return nil
}
