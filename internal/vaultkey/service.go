// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package vaultkey implements the encryption service for Keywarden.
// It owns all master key material: the in-session key produced during
// setup, the keychain persistence, and the sealing of workspace
// values. UI layers only ever see the key through MasterKeyForDisplay
// and must hand it back verbatim to StoreMasterKey.
package vaultkey

import (
	"errors"
	"fmt"
	"sync"

	"github.com/keywarden/keywarden/internal/crypto"
	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/keychain"
	"github.com/keywarden/keywarden/internal/logging"
	"github.com/keywarden/keywarden/internal/model"
)

// Service is the contract the setup flow and the value views depend
// on. The production implementation is KeyService; tests substitute
// fakes.
type Service interface {
	// Setup flow contract.
	ShowMasterKeySetup() bool
	MasterKeyForDisplay() string
	GenerateMasterKey() error
	StoreMasterKey(key string) error
	ImportMasterKey(key string) error
	CancelSetup()

	// Workspace value operations, available once a key is stored.
	Unlock() error
	Locked() bool
	Fingerprint() (string, error)
	EncryptValue(name, plaintext string) error
	DecryptValue(name string) (string, error)
	ListValues() ([]model.Value, error)
	DeleteValue(name string) error
}

// KeyService is the production Service backed by the system keychain
// and the vault database.
type KeyService struct {
	workspace string

	mu         sync.Mutex
	sessionKey *crypto.MasterKey // generated this session, pending confirmation
	activeKey  *crypto.MasterKey // unlocked key for value operations
	hasStored  bool              // a key exists in the keychain
	dismissed  bool              // setup was cancelled this session
}

var _ Service = (*KeyService)(nil)

// New creates the service for a workspace and probes the keychain for
// an existing master key.
func New(workspace string) (*KeyService, error) {
	exists, err := keychain.Exists(workspace)
	if err != nil {
		return nil, fmt.Errorf("could not probe keychain: %w", err)
	}
	return &KeyService{workspace: workspace, hasStored: exists}, nil
}

// ShowMasterKeySetup reports whether the setup dialog should be shown:
// no key is stored for the workspace and setup was not cancelled this
// session.
func (s *KeyService) ShowMasterKeySetup() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.hasStored && !s.dismissed
}

// MasterKeyForDisplay returns the plaintext of the key generated this
// session, or "" when none exists. Callers render it and hand it back
// to StoreMasterKey; they must not retain it.
func (s *KeyService) MasterKeyForDisplay() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionKey == nil {
		return ""
	}
	return s.sessionKey.String()
}

// GenerateMasterKey produces a fresh key and holds it as the session
// key pending user confirmation. A previous unconfirmed session key is
// destroyed.
func (s *KeyService) GenerateMasterKey() error {
	k, err := crypto.GenerateMasterKey()
	if err != nil {
		return &GenerationError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionKey != nil {
		s.sessionKey.Destroy()
	}
	s.sessionKey = k
	return nil
}

// StoreMasterKey persists the confirmed key to the system keychain and
// records its verifier in the vault meta. On success the setup flow is
// finished for this workspace.
func (s *KeyService) StoreMasterKey(key string) error {
	if key == "" {
		return &StorageError{Err: errors.New("empty master key")}
	}
	parsed, err := crypto.ParseMasterKey(key)
	if err != nil {
		return &StorageError{Err: err}
	}

	if err := s.persist(parsed); err != nil {
		return &StorageError{Err: err}
	}

	s.mu.Lock()
	if s.sessionKey != nil {
		s.sessionKey.Destroy()
		s.sessionKey = nil
	}
	s.activeKey = parsed
	s.hasStored = true
	s.mu.Unlock()

	logging.Infof("master key stored for workspace %q (fingerprint %s)", s.workspace, parsed.Fingerprint())
	if db.IsInitialized() {
		_ = db.LogAction("STORE_MASTER_KEY", fmt.Sprintf("workspace: %s, fingerprint: %s", s.workspace, parsed.Fingerprint()))
	}
	return nil
}

// ImportMasterKey validates a key shared by a teammate and persists
// it. Validation covers the transfer format and, when the vault
// already carries a key verifier, a match against this workspace.
func (s *KeyService) ImportMasterKey(key string) error {
	parsed, err := crypto.ParseMasterKey(key)
	if err != nil {
		return &ImportError{Reason: "Invalid master key", Err: err}
	}

	if db.IsInitialized() {
		stored, err := db.GetMeta(db.MetaKeyVerifier)
		if err != nil {
			return &ImportError{Reason: "Could not read vault metadata", Err: err}
		}
		if stored != "" {
			verifier, err := parsed.Verifier()
			if err != nil {
				return &ImportError{Reason: "Invalid master key", Err: err}
			}
			if verifier != stored {
				return &ImportError{Reason: "Master key does not match this workspace"}
			}
		}
	}

	if err := s.persist(parsed); err != nil {
		return &ImportError{Reason: "Could not store master key", Err: err}
	}

	s.mu.Lock()
	if s.sessionKey != nil {
		s.sessionKey.Destroy()
		s.sessionKey = nil
	}
	s.activeKey = parsed
	s.hasStored = true
	s.mu.Unlock()

	logging.Infof("master key imported for workspace %q (fingerprint %s)", s.workspace, parsed.Fingerprint())
	if db.IsInitialized() {
		_ = db.LogAction("IMPORT_MASTER_KEY", fmt.Sprintf("workspace: %s, fingerprint: %s", s.workspace, parsed.Fingerprint()))
	}
	return nil
}

// persist writes the key to the keychain and the verifier to vault
// meta (when the vault is open and has none yet).
func (s *KeyService) persist(k *crypto.MasterKey) error {
	if err := keychain.Save(s.workspace, k.String()); err != nil {
		return err
	}
	if db.IsInitialized() {
		stored, err := db.GetMeta(db.MetaKeyVerifier)
		if err != nil {
			return err
		}
		if stored == "" {
			verifier, err := k.Verifier()
			if err != nil {
				return err
			}
			if err := db.SetMeta(db.MetaKeyVerifier, verifier); err != nil {
				return err
			}
		}
	}
	return nil
}

// CancelSetup discards any in-session generated key and hides the
// setup dialog for the rest of this session.
func (s *KeyService) CancelSetup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionKey != nil {
		s.sessionKey.Destroy()
		s.sessionKey = nil
	}
	s.dismissed = true
}

// Unlock loads the stored master key from the keychain into memory.
// It is a no-op when already unlocked.
func (s *KeyService) Unlock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeKey != nil {
		return nil
	}
	encoded, err := keychain.Load(s.workspace)
	if err != nil {
		return err
	}
	parsed, err := crypto.ParseMasterKey(encoded)
	if err != nil {
		return fmt.Errorf("stored master key is corrupt: %w", err)
	}
	s.activeKey = parsed
	return nil
}

// Locked reports whether value operations require an Unlock first.
func (s *KeyService) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKey == nil
}

// Fingerprint returns the short identifier of the stored master key.
func (s *KeyService) Fingerprint() (string, error) {
	if err := s.Unlock(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKey.Fingerprint(), nil
}

// EncryptValue seals a plaintext under the workspace key and stores it
// in the vault.
func (s *KeyService) EncryptValue(name, plaintext string) error {
	if name == "" {
		return errors.New("value name cannot be empty")
	}
	if err := s.Unlock(); err != nil {
		return err
	}
	s.mu.Lock()
	key := s.activeKey
	s.mu.Unlock()

	nonce, ciphertext, err := key.Seal(name, plaintext)
	if err != nil {
		return fmt.Errorf("could not encrypt value %q: %w", name, err)
	}
	return db.PutValue(name, nonce, ciphertext)
}

// DecryptValue loads a value from the vault and opens it.
func (s *KeyService) DecryptValue(name string) (string, error) {
	if err := s.Unlock(); err != nil {
		return "", err
	}
	v, err := db.GetValue(name)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	key := s.activeKey
	s.mu.Unlock()
	return key.Open(v.Name, v.Nonce, v.Ciphertext)
}

// ListValues returns the encrypted values in the vault. No key is
// required; only names and timestamps are meaningful to callers.
func (s *KeyService) ListValues() ([]model.Value, error) {
	return db.GetAllValues()
}

// DeleteValue removes a value from the vault.
func (s *KeyService) DeleteValue(name string) error {
	return db.DeleteValue(name)
}
