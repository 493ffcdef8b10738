// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures shared across Keywarden.
package model

import "time"

// Value is a single encrypted workspace value as stored in the vault.
// The plaintext never appears here; Nonce and Ciphertext are the output
// of the AES-256-GCM seal performed by the encryption service.
type Value struct {
	Name       string
	Nonce      []byte
	Ciphertext []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuditLogEntry represents a single entry in the vault audit log.
type AuditLogEntry struct {
	ID        int
	Timestamp string
	Username  string
	Action    string
	Details   string
}

// MetaEntry is a key/value pair from the vault meta table (schema
// version, master key verifier, workspace ID).
type MetaEntry struct {
	Key   string
	Value string
}
