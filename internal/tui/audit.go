// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/i18n"
	"github.com/keywarden/keywarden/internal/model"
)

// auditModel shows the vault audit log, newest first.
type auditModel struct {
	entries []model.AuditLogEntry
	offset  int
	errMsg  string

	width, height int
}

func newAuditModel() *auditModel {
	m := &auditModel{}
	entries, err := db.GetAllAuditLogEntries()
	if err != nil {
		m.errMsg = fmt.Sprintf(i18n.T("audit.load_failed"), err)
		return m
	}
	m.entries = entries
	return m
}

func (m *auditModel) Init() tea.Cmd {
	return nil
}

func (m *auditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return backToMenuMsg{} }
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < len(m.entries)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m *auditModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📜 " + i18n.T("audit.title")))
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		return docStyle.Render(b.String())
	}
	if len(m.entries) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("audit.empty")))
		return docStyle.Render(b.String())
	}

	pageSize := 15
	if m.height > 8 {
		pageSize = m.height - 8
	}
	end := m.offset + pageSize
	if end > len(m.entries) {
		end = len(m.entries)
	}
	for _, e := range m.entries[m.offset:end] {
		b.WriteString(fmt.Sprintf("%s  %-12s  %-20s %s\n", e.Timestamp, e.Username, e.Action, e.Details))
	}

	b.WriteString("\n" + helpStyle.Render(i18n.T("audit.help")))
	return docStyle.Render(b.String())
}
