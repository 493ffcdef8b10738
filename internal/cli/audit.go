// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/i18n"
)

// newAuditCmd prints the vault audit log, newest first.
func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Print the vault audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := db.GetAllAuditLogEntries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println(i18n.T("audit.empty"))
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-12s  %-20s %s\n", e.Timestamp, e.Username, e.Action, e.Details)
			}
			return nil
		},
	}
}
