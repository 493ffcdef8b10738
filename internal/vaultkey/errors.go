// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package vaultkey

import "fmt"

// GenerationError reports that a fresh master key could not be
// produced (entropy or backend failure). The setup flow stays in the
// Choose state and the user may retry.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("master key generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StorageError reports that a confirmed master key could not be
// persisted to the system keychain. The displayed key stays available
// so the user can retry or copy it out.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("master key storage failed: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ImportError reports that a candidate master key failed validation or
// persistence. Reason carries the human-readable message shown inline
// in the import form.
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ImportError) Unwrap() error { return e.Err }

// Message returns the user-facing text for the import failure.
func (e *ImportError) Message() string { return e.Reason }
