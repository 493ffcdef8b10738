// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/keywarden/keywarden/internal/model"

// Store defines the interface for all vault database operations.
// Keeping it narrow makes it straightforward to fake in tests.
type Store interface {
	// Encrypted value methods
	PutValue(name string, nonce, ciphertext []byte) error
	GetValue(name string) (*model.Value, error)
	GetAllValues() ([]model.Value, error)
	DeleteValue(name string) error

	// Meta methods (schema version, master key verifier)
	GetMeta(key string) (string, error)
	SetMeta(key, value string) error

	// Audit log methods
	LogAction(action string, details string) error
	GetAllAuditLogEntries() ([]model.AuditLogEntry, error)

	// Backup methods
	ExportBackup() (*model.BackupData, error)
	ImportBackup(data *model.BackupData) error

	Close() error
}
