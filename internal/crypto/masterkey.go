// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package crypto implements the master key material handling for
// Keywarden: generation, the textual transfer encoding used when a key
// is displayed or shared, derived subkeys, and the AES-256-GCM sealing
// of workspace values.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the master key length in bytes (AES-256).
const KeySize = 32

// keyPrefix marks the textual encoding of a master key so a pasted
// import can be recognized and versioned.
const keyPrefix = "kw1."

// HKDF info strings for the derived subkeys. The value-encryption
// subkey seals workspace values; the key-check subkey only ever leaves
// this package as a hex verifier stored in vault meta.
const (
	infoValueEncryption = "keywarden/v1/value-encryption"
	infoKeyCheck        = "keywarden/v1/key-check"
)

// ErrMalformedKey is returned when a candidate key string does not
// decode to valid Keywarden key material.
var ErrMalformedKey = errors.New("malformed master key")

// MasterKey holds the raw master key material for one workspace.
type MasterKey struct {
	raw []byte
}

// GenerateMasterKey produces a fresh random master key.
func GenerateMasterKey() (*MasterKey, error) {
	raw := make([]byte, KeySize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("could not read entropy: %w", err)
	}
	return &MasterKey{raw: raw}, nil
}

// ParseMasterKey decodes the textual form produced by String. It
// rejects anything that is not the kw1 prefix followed by base64 of
// exactly KeySize bytes.
func ParseMasterKey(s string) (*MasterKey, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, keyPrefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrMalformedKey, keyPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, keyPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: got %d key bytes, want %d", ErrMalformedKey, len(raw), KeySize)
	}
	return &MasterKey{raw: raw}, nil
}

// String returns the textual transfer encoding of the key. This is the
// form displayed during setup and shared between teammates.
func (k *MasterKey) String() string {
	return keyPrefix + base64.StdEncoding.EncodeToString(k.raw)
}

// Fingerprint returns a short non-secret identifier for the key,
// suitable for status output.
func (k *MasterKey) Fingerprint() string {
	h := sha256.Sum256(k.raw)
	return hex.EncodeToString(h[:6])
}

// Verifier returns a hex string derived from the key via HKDF. It is
// stored in the vault meta table so an imported key can be checked
// against the workspace the vault was encrypted for. The verifier does
// not reveal the key or the value-encryption subkey.
func (k *MasterKey) Verifier() (string, error) {
	sub, err := k.derive(infoKeyCheck, 16)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sub), nil
}

// Seal encrypts a plaintext value with AES-256-GCM under the derived
// value-encryption subkey. The value name is bound as additional
// authenticated data so ciphertexts cannot be swapped between names.
func (k *MasterKey) Seal(name, plaintext string) (nonce, ciphertext []byte, err error) {
	gcm, err := k.aead()
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("could not read nonce: %w", err)
	}
	ciphertext = gcm.Seal(nil, nonce, []byte(plaintext), []byte(name))
	return nonce, ciphertext, nil
}

// Open decrypts a value previously produced by Seal for the same name.
func (k *MasterKey) Open(name string, nonce, ciphertext []byte) (string, error) {
	gcm, err := k.aead()
	if err != nil {
		return "", err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return "", fmt.Errorf("could not decrypt value %q: %w", name, err)
	}
	return string(plaintext), nil
}

// Destroy zeroes the key material. The MasterKey must not be used
// afterwards.
func (k *MasterKey) Destroy() {
	for i := range k.raw {
		k.raw[i] = 0
	}
	k.raw = nil
}

func (k *MasterKey) aead() (cipher.AEAD, error) {
	encKey, err := k.derive(infoValueEncryption, KeySize)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// derive expands a subkey of the requested length via HKDF-SHA256.
func (k *MasterKey) derive(info string, length int) ([]byte, error) {
	if len(k.raw) != KeySize {
		return nil, errors.New("master key has been destroyed")
	}
	out := make([]byte, length)
	r := hkdf.New(sha256.New, k.raw, nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("hkdf expand failed: %w", err)
	}
	return out, nil
}
