// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package backup reads and writes Zstandard-compressed JSON dumps of
// the vault. Values remain encrypted inside the backup; restoring on
// another device still requires importing the workspace master key.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/keywarden/keywarden/internal/model"
	"github.com/klauspost/compress/zstd"
)

// Suffix is appended to backup filenames that don't already carry it.
const Suffix = ".json.zst"

// NormalizeFilename appends the backup suffix when missing.
func NormalizeFilename(name string) string {
	if strings.HasSuffix(name, ".zst") {
		return name
	}
	return name + Suffix
}

// Write serializes the backup data as zstd-compressed JSON. The file
// is created 0600; it contains ciphertext and audit entries only, but
// there is no reason to share it more widely.
func Write(filename string, data *model.BackupData) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("could not create backup file: %w", err)
	}

	zw, err := zstd.NewWriter(file)
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("could not create zstd writer: %w", err)
	}

	if err := json.NewEncoder(zw).Encode(data); err != nil {
		_ = zw.Close()
		_ = file.Close()
		return fmt.Errorf("could not encode backup json: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("could not finish zstd stream: %w", err)
	}
	return file.Close()
}

// Read decodes a zstd-compressed JSON backup file.
func Read(filename string) (*model.BackupData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open backup file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zr, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("could not decode backup json: %w", err)
	}
	return &data, nil
}
