// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for Keywarden.
// This file contains the top-level model that acts as a router to the
// sub-views: the main menu, the master key setup dialog, the values
// browser, and the audit log.
package tui // import "github.com/keywarden/keywarden/internal/tui"

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/keywarden/keywarden/internal/i18n"
	"github.com/keywarden/keywarden/internal/vaultkey"
)

// viewState represents which part of the UI is currently active.
type viewState int

const (
	menuView viewState = iota
	setupView
	valuesView
	auditView
)

// backToMenuMsg is sent by sub-models when the user leaves a view.
type backToMenuMsg struct{}

// mainModel is the top-level model for the TUI. It acts as a state
// machine and router, delegating updates and view rendering to the
// currently active sub-model. The encryption service's visibility
// signal decides whether the setup dialog is shown; the router never
// toggles that signal itself.
type mainModel struct {
	svc       vaultkey.Service
	workspace string

	state  viewState
	menu   menuModel
	setup  *setupModel
	values *valuesModel
	audit  *auditModel

	statusMsg string

	width  int
	height int
}

// menuModel holds the state for the main menu.
type menuModel struct {
	choices []string
	cursor  int
}

func newMainModel(svc vaultkey.Service, workspace string) mainModel {
	m := mainModel{
		svc:       svc,
		workspace: workspace,
		state:     menuView,
		menu: menuModel{
			choices: []string{
				i18n.T("menu.values"),
				i18n.T("menu.audit"),
				i18n.T("menu.quit"),
			},
		},
	}
	// The controller is only active while the service says setup is
	// needed; the flag is owned externally.
	if svc.ShowMasterKeySetup() {
		m.state = setupView
		m.setup = newSetupModel(svc)
	}
	return m
}

func (m mainModel) Init() tea.Cmd {
	return nil
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Fall through so the active sub-model learns the size too.
	case backToMenuMsg:
		m.state = menuView
		return m, nil
	case setupClosedMsg:
		m.state = menuView
		if msg.completed {
			m.statusMsg = i18n.T("setup.completed")
		}
		m.setup = nil
		return m, nil
	}

	switch m.state {
	case setupView:
		if m.setup == nil {
			m.state = menuView
			return m, nil
		}
		updated, cmd := m.setup.Update(msg)
		m.setup = updated.(*setupModel)
		return m, cmd
	case valuesView:
		updated, cmd := m.values.Update(msg)
		m.values = updated.(*valuesModel)
		return m, cmd
	case auditView:
		updated, cmd := m.audit.Update(msg)
		m.audit = updated.(*auditModel)
		return m, cmd
	}

	return m.updateMenu(msg)
}

func (m mainModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.menu.cursor > 0 {
			m.menu.cursor--
		}
	case "down", "j":
		if m.menu.cursor < len(m.menu.choices)-1 {
			m.menu.cursor++
		}
	case "s":
		// Re-open setup explicitly, e.g. after cancelling it earlier.
		if m.svc.ShowMasterKeySetup() {
			m.state = setupView
			m.setup = newSetupModel(m.svc)
		}
	case "enter":
		switch m.menu.cursor {
		case 0:
			m.statusMsg = ""
			m.values = newValuesModel(m.svc)
			m.state = valuesView
		case 1:
			m.statusMsg = ""
			m.audit = newAuditModel()
			m.state = auditView
		case 2:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m mainModel) View() string {
	switch m.state {
	case setupView:
		if m.setup != nil {
			return m.setup.View()
		}
	case valuesView:
		return m.values.View()
	case auditView:
		return m.audit.View()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("🏰 " + i18n.T("menu.title")))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf(i18n.T("menu.workspace"), m.workspace)))
	b.WriteString("\n\n")

	for i, choice := range m.menu.choices {
		cursor := "  "
		style := itemStyle
		if m.menu.cursor == i {
			cursor = "> "
			style = selectedItemStyle
		}
		b.WriteString(style.Render(cursor + choice))
		b.WriteString("\n")
	}

	if m.svc.ShowMasterKeySetup() {
		b.WriteString("\n" + specialStyle.Render(i18n.T("menu.setup_pending")))
	}
	if m.statusMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.statusMsg))
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("menu.help")))
	return docStyle.Render(b.String())
}

// Run starts the full-screen TUI.
func Run(svc vaultkey.Service, workspace string) error {
	p := tea.NewProgram(newMainModel(svc, workspace), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunSetup starts only the master key setup dialog, used by the
// `keywarden setup` command.
func RunSetup(svc vaultkey.Service) error {
	if !svc.ShowMasterKeySetup() {
		return nil
	}
	p := tea.NewProgram(standaloneSetup{inner: newSetupModel(svc)}, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// standaloneSetup wraps the setup dialog so it quits the program when
// the dialog closes.
type standaloneSetup struct {
	inner *setupModel
}

func (s standaloneSetup) Init() tea.Cmd {
	return s.inner.Init()
}

func (s standaloneSetup) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(setupClosedMsg); ok {
		return s, tea.Quit
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
		s.inner.svc.CancelSetup()
		return s, tea.Quit
	}
	updated, cmd := s.inner.Update(msg)
	s.inner = updated.(*setupModel)
	return s, cmd
}

func (s standaloneSetup) View() string {
	return s.inner.View()
}
