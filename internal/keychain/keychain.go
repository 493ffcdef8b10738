// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package keychain persists the workspace master key in the operating
// system keychain (macOS Keychain, Windows Credential Manager, or the
// freedesktop Secret Service). One entry exists per workspace.
package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ServiceName identifies Keywarden entries in the system keychain.
const ServiceName = "keywarden"

// ErrNotFound is returned by Load when no key is stored for the
// workspace.
var ErrNotFound = errors.New("no master key stored for workspace")

// Save stores the encoded master key for a workspace. The caller passes
// the textual kw1 encoding; the keychain backend handles at-rest
// protection.
func Save(workspace, encodedKey string) error {
	if workspace == "" {
		return errors.New("workspace name cannot be empty")
	}
	if encodedKey == "" {
		return errors.New("encoded key cannot be empty")
	}
	if err := keyring.Set(ServiceName, workspace, encodedKey); err != nil {
		return fmt.Errorf("keychain write for workspace %q failed: %w", workspace, err)
	}
	return nil
}

// Load retrieves the encoded master key for a workspace. ErrNotFound is
// returned when no entry exists.
func Load(workspace string) (string, error) {
	encoded, err := keyring.Get(ServiceName, workspace)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keychain read for workspace %q failed: %w", workspace, err)
	}
	return encoded, nil
}

// Exists reports whether a master key is stored for the workspace.
func Exists(workspace string) (bool, error) {
	_, err := Load(workspace)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Clear removes the master key entry for a workspace. Clearing a
// workspace that has no entry is not an error.
func Clear(workspace string) error {
	if err := keyring.Delete(ServiceName, workspace); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keychain delete for workspace %q failed: %w", workspace, err)
	}
	return nil
}
