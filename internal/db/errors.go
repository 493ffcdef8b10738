// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "errors"

// ErrValueNotFound is returned when a named value does not exist in the
// vault.
var ErrValueNotFound = errors.New("value not found in vault")

// ErrNotInitialized is returned by package-level helpers when InitDB
// has not been called.
var ErrNotInitialized = errors.New("vault database not initialized")

// Meta keys used by the store and the encryption service.
const (
	MetaSchemaVersion = "schema_version"
	MetaKeyVerifier   = "key_verifier"
)

// SchemaVersion is the current vault schema version, recorded in meta
// on creation and checked on backup restore.
const SchemaVersion = 1
