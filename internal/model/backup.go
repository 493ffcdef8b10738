// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.
package model

// BackupData is a container for all data exported in a vault backup.
// Values stay encrypted in the backup; the master key never leaves the
// keychain through this path.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int `json:"schema_version"`

	Meta            []MetaEntry     `json:"meta"`
	Values          []Value         `json:"values"`
	AuditLogEntries []AuditLogEntry `json:"audit_log_entries"`
}
