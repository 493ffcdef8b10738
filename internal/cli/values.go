// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/i18n"
)

// newSetCmd encrypts and stores a value.
func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> [value]",
		Short: "Encrypt and store a workspace value",
		Long: `Encrypts a value under the workspace master key and stores it in the
vault. When the value is omitted it is read from a hidden prompt, or
from stdin when stdin is not a terminal.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				v, err := readValue(name)
				if err != nil {
					return err
				}
				value = v
			}
			if err := svc.EncryptValue(name, value); err != nil {
				return err
			}
			fmt.Printf(i18n.T("cli.value_stored")+"\n", name)
			return nil
		},
	}
}

// readValue reads a value interactively (hidden) or from piped stdin.
func readValue(name string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Printf(i18n.T("cli.enter_value"), name)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("could not read value: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("could not read value from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newGetCmd decrypts a value and prints it to stdout.
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Decrypt and print a workspace value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plaintext, err := svc.DecryptValue(args[0])
			if err != nil {
				if errors.Is(err, db.ErrValueNotFound) {
					return fmt.Errorf(i18n.T("cli.value_not_found"), args[0])
				}
				return err
			}
			fmt.Println(plaintext)
			return nil
		},
	}
}

// newListCmd lists the stored value names. No key is needed; the vault
// only reveals names and timestamps.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored workspace values",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := svc.ListValues()
			if err != nil {
				return err
			}
			if len(values) == 0 {
				fmt.Println(i18n.T("values.empty"))
				return nil
			}
			for _, v := range values {
				fmt.Printf("%-32s %s\n", v.Name, v.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

// newDeleteCmd removes a value from the vault.
func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a workspace value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.DeleteValue(args[0]); err != nil {
				if errors.Is(err, db.ErrValueNotFound) {
					return fmt.Errorf(i18n.T("cli.value_not_found"), args[0])
				}
				return err
			}
			fmt.Printf(i18n.T("cli.value_deleted")+"\n", args[0])
			return nil
		},
	}
}
