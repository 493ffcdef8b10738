// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/backup"
	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/i18n"
)

// newBackupCmd dumps the vault into a zstd-compressed JSON file.
func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Create a compressed (zstd) JSON backup of the vault",
		Long: `Dumps the vault (encrypted values, meta entries and the audit log)
into a single, Zstandard-compressed JSON file.

Values stay encrypted inside the backup. Restoring on another device
still requires importing the workspace master key.

If no output file is specified, a default filename
'keywarden-backup-YYYY-MM-DD.json.zst' is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var outputFile string
			if len(args) == 0 {
				outputFile = fmt.Sprintf("keywarden-backup-%s%s", time.Now().Format("2006-01-02"), backup.Suffix)
			} else {
				outputFile = backup.NormalizeFilename(args[0])
			}

			data, err := db.ExportBackup()
			if err != nil {
				return err
			}
			if err := backup.Write(outputFile, data); err != nil {
				return err
			}
			fmt.Printf(i18n.T("cli.backup_written")+"\n", outputFile)
			return nil
		},
	}
}

// newRestoreCmd replaces the vault contents from a backup file.
func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file.json.zst>",
		Short: "Restore the vault from a compressed JSON backup",
		Long: `Restores the entire vault from a Zstandard-compressed JSON backup
file. Existing vault contents are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := backup.Read(args[0])
			if err != nil {
				return err
			}
			if err := db.ImportBackup(data); err != nil {
				return err
			}
			fmt.Printf(i18n.T("cli.restore_done")+"\n", args[0])
			return nil
		},
	}
}
