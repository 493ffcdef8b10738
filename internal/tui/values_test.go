// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"errors"
	"sort"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/keywarden/keywarden/internal/i18n"
	"github.com/keywarden/keywarden/internal/model"
	"github.com/keywarden/keywarden/internal/vaultkey"
)

// vaultFake backs the values browser tests with an in-memory map.
type vaultFake struct {
	fakeService
	data map[string]string

	decryptErr error
	encryptErr error
}

func newVaultFake() *vaultFake {
	return &vaultFake{data: map[string]string{}}
}

func (f *vaultFake) EncryptValue(name, plaintext string) error {
	if f.encryptErr != nil {
		return f.encryptErr
	}
	f.data[name] = plaintext
	return nil
}

func (f *vaultFake) DecryptValue(name string) (string, error) {
	if f.decryptErr != nil {
		return "", f.decryptErr
	}
	v, ok := f.data[name]
	if !ok {
		return "", errors.New("value not found")
	}
	return v, nil
}

func (f *vaultFake) ListValues() ([]model.Value, error) {
	names := make([]string, 0, len(f.data))
	for name := range f.data {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]model.Value, 0, len(names))
	for _, name := range names {
		values = append(values, model.Value{Name: name})
	}
	return values, nil
}

func (f *vaultFake) DeleteValue(name string) error {
	if _, ok := f.data[name]; !ok {
		return errors.New("value not found")
	}
	delete(f.data, name)
	return nil
}

var _ vaultkey.Service = (*vaultFake)(nil)

func pressValues(t *testing.T, m *valuesModel, msg tea.KeyMsg) *valuesModel {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(*valuesModel)
}

func TestValues_AddFlow(t *testing.T) {
	i18n.Init("en")
	svc := newVaultFake()
	m := newValuesModel(svc)

	m = pressValues(t, m, keyRune('a'))
	if m.state != valuesStateAddName {
		t.Fatalf("expected add-name state, got %v", m.state)
	}

	m.nameInput.SetValue("db/password")
	m = pressValues(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != valuesStateAddValue {
		t.Fatalf("expected add-value state, got %v", m.state)
	}

	m.valueInput.SetValue("hunter2")
	m = pressValues(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != valuesStateList {
		t.Fatalf("expected list state after save, got %v", m.state)
	}
	if svc.data["db/password"] != "hunter2" {
		t.Fatalf("value not stored: %v", svc.data)
	}
	if len(m.values) != 1 || m.values[0].Name != "db/password" {
		t.Fatalf("list not refreshed: %v", m.values)
	}
}

func TestValues_AddRequiresName(t *testing.T) {
	i18n.Init("en")
	m := newValuesModel(newVaultFake())

	m = pressValues(t, m, keyRune('a'))
	m.nameInput.SetValue("   ")
	m = pressValues(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != valuesStateAddName {
		t.Fatalf("empty name advanced the form: %v", m.state)
	}
	if m.errMsg == "" {
		t.Fatal("expected an inline error for the empty name")
	}
}

func TestValues_RevealToggle(t *testing.T) {
	i18n.Init("en")
	svc := newVaultFake()
	svc.data["api/token"] = "tok-123"
	m := newValuesModel(svc)

	m = pressValues(t, m, keyRune('r'))
	if m.revealedName != "api/token" || m.revealedValue != "tok-123" {
		t.Fatalf("reveal failed: %q=%q", m.revealedName, m.revealedValue)
	}

	// Second press hides again.
	m = pressValues(t, m, keyRune('r'))
	if m.revealedName != "" || m.revealedValue != "" {
		t.Fatal("reveal not cleared on toggle")
	}
}

func TestValues_RevealClearedOnMove(t *testing.T) {
	i18n.Init("en")
	svc := newVaultFake()
	svc.data["a"] = "1"
	svc.data["b"] = "2"
	m := newValuesModel(svc)

	m = pressValues(t, m, keyRune('r'))
	if m.revealedValue == "" {
		t.Fatal("reveal failed")
	}
	m = pressValues(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.revealedValue != "" {
		t.Fatal("plaintext survived cursor movement")
	}
}

func TestValues_DeleteConfirmAndCancel(t *testing.T) {
	i18n.Init("en")
	svc := newVaultFake()
	svc.data["doomed"] = "x"
	m := newValuesModel(svc)

	// Cancel first.
	m = pressValues(t, m, keyRune('d'))
	if m.state != valuesStateConfirmDelete {
		t.Fatalf("expected confirm state, got %v", m.state)
	}
	m = pressValues(t, m, keyRune('n'))
	if _, ok := svc.data["doomed"]; !ok {
		t.Fatal("value deleted despite cancel")
	}

	// Now confirm.
	m = pressValues(t, m, keyRune('d'))
	m = pressValues(t, m, keyRune('y'))
	if _, ok := svc.data["doomed"]; ok {
		t.Fatal("value not deleted after confirm")
	}
	if len(m.values) != 0 {
		t.Fatalf("list not refreshed after delete: %v", m.values)
	}
}

func TestValues_DecryptErrorShown(t *testing.T) {
	i18n.Init("en")
	svc := newVaultFake()
	svc.data["broken"] = "x"
	svc.decryptErr = errors.New("bad key")
	m := newValuesModel(svc)

	m = pressValues(t, m, keyRune('r'))
	if m.errMsg == "" {
		t.Fatal("expected decrypt error to surface")
	}
	if m.revealedValue != "" {
		t.Fatal("plaintext set despite decrypt error")
	}
}
