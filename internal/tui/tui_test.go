// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/keywarden/keywarden/internal/i18n"
)

func TestMainModel_StartsInSetupWhenNeeded(t *testing.T) {
	i18n.Init("en")
	svc := &fakeService{showSetup: true}
	m := newMainModel(svc, "team-a")
	if m.state != setupView {
		t.Fatalf("expected setup view on start, got %v", m.state)
	}
	if m.setup == nil {
		t.Fatal("setup model not created")
	}
}

func TestMainModel_StartsInMenuWhenKeyStored(t *testing.T) {
	i18n.Init("en")
	svc := &fakeService{showSetup: false}
	m := newMainModel(svc, "team-a")
	if m.state != menuView {
		t.Fatalf("expected menu view on start, got %v", m.state)
	}
}

func TestMainModel_SetupClosedReturnsToMenu(t *testing.T) {
	i18n.Init("en")
	svc := &fakeService{showSetup: true}
	m := newMainModel(svc, "team-a")

	updated, _ := m.Update(setupClosedMsg{completed: true})
	mm := updated.(mainModel)
	if mm.state != menuView {
		t.Fatalf("expected menu after setup close, got %v", mm.state)
	}
	if mm.statusMsg == "" {
		t.Fatal("expected a completion status message")
	}
	if mm.setup != nil {
		t.Fatal("setup model not released")
	}
}

func TestMainModel_CancelledSetupShowsNoStatus(t *testing.T) {
	i18n.Init("en")
	svc := &fakeService{showSetup: true}
	m := newMainModel(svc, "team-a")

	updated, _ := m.Update(setupClosedMsg{completed: false})
	mm := updated.(mainModel)
	if mm.statusMsg != "" {
		t.Fatalf("cancel must not report success: %q", mm.statusMsg)
	}
}

func TestMainModel_ReopenSetupFromMenu(t *testing.T) {
	i18n.Init("en")
	svc := &fakeService{showSetup: true}
	m := newMainModel(svc, "team-a")

	// Close the dialog, then reopen it from the menu.
	updated, _ := m.Update(setupClosedMsg{completed: false})
	mm := updated.(mainModel)

	updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	mm = updated.(mainModel)
	if mm.state != setupView || mm.setup == nil {
		t.Fatal("'s' did not reopen the setup dialog")
	}
}

func TestMainModel_ReopenIgnoredWhenNotNeeded(t *testing.T) {
	i18n.Init("en")
	svc := &fakeService{showSetup: false}
	m := newMainModel(svc, "team-a")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	mm := updated.(mainModel)
	if mm.state != menuView {
		t.Fatal("setup reopened although no setup is needed")
	}
}

func TestStandaloneSetup_QuitsOnClose(t *testing.T) {
	i18n.Init("en")
	svc := &fakeService{showSetup: true}
	s := standaloneSetup{inner: newSetupModel(svc)}

	_, cmd := s.Update(setupClosedMsg{completed: true})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Fatalf("expected tea.QuitMsg, got %#v", msg)
	}
}
