// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for the Keywarden vault.
// The vault is a device-local SQLite database accessed through Bun; it
// only ever holds ciphertext, meta entries and the audit log.
package db // import "github.com/keywarden/keywarden/internal/db"

import (
	"fmt"

	"github.com/keywarden/keywarden/internal/model"
)

// store is the package-level vault store, set by InitDB.
var store Store

// InitDB opens the vault database at the given DSN, creates the schema
// if needed, and sets the package-level store. Use ":memory:" in tests.
func InitDB(dsn string) error {
	s, err := NewSqliteStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize vault store: %w", err)
	}
	store = s
	return nil
}

// IsInitialized reports whether the package-level store has been set.
func IsInitialized() bool {
	return store != nil
}

// CloseDB closes the package-level store, if any.
func CloseDB() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

// SetStoreForTest swaps the package-level store and returns the
// previous one. Tests are expected to restore it.
func SetStoreForTest(s Store) Store {
	prev := store
	store = s
	return prev
}

// The helpers below mirror the Store interface on the package level so
// callers don't have to thread a store handle through every layer.

func PutValue(name string, nonce, ciphertext []byte) error {
	if store == nil {
		return ErrNotInitialized
	}
	return store.PutValue(name, nonce, ciphertext)
}

func GetValue(name string) (*model.Value, error) {
	if store == nil {
		return nil, ErrNotInitialized
	}
	return store.GetValue(name)
}

func GetAllValues() ([]model.Value, error) {
	if store == nil {
		return nil, ErrNotInitialized
	}
	return store.GetAllValues()
}

func DeleteValue(name string) error {
	if store == nil {
		return ErrNotInitialized
	}
	return store.DeleteValue(name)
}

func GetMeta(key string) (string, error) {
	if store == nil {
		return "", ErrNotInitialized
	}
	return store.GetMeta(key)
}

func SetMeta(key, value string) error {
	if store == nil {
		return ErrNotInitialized
	}
	return store.SetMeta(key, value)
}

func LogAction(action, details string) error {
	if store == nil {
		return ErrNotInitialized
	}
	return store.LogAction(action, details)
}

func GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	if store == nil {
		return nil, ErrNotInitialized
	}
	return store.GetAllAuditLogEntries()
}

func ExportBackup() (*model.BackupData, error) {
	if store == nil {
		return nil, ErrNotInitialized
	}
	return store.ExportBackup()
}

func ImportBackup(data *model.BackupData) error {
	if store == nil {
		return ErrNotInitialized
	}
	return store.ImportBackup(data)
}
