// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package keychain

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSaveLoadClear(t *testing.T) {
	keyring.MockInit()

	if err := Save("testws", "kw1.somekey"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load("testws")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "kw1.somekey" {
		t.Fatalf("loaded key mismatch: %q", got)
	}

	ok, err := Exists("testws")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	if err := Clear("testws"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := Load("testws"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Clear, got %v", err)
	}
	ok, err = Exists("testws")
	if err != nil || ok {
		t.Fatalf("Exists after Clear: ok=%v err=%v", ok, err)
	}
}

func TestClear_MissingEntryIsNoError(t *testing.T) {
	keyring.MockInit()
	if err := Clear("never-stored"); err != nil {
		t.Fatalf("Clear of missing entry: %v", err)
	}
}

func TestSave_RejectsEmptyInputs(t *testing.T) {
	keyring.MockInit()
	if err := Save("", "kw1.x"); err == nil {
		t.Fatal("expected error for empty workspace")
	}
	if err := Save("ws", ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}
