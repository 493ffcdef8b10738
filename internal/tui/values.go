// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/keywarden/keywarden/internal/i18n"
	"github.com/keywarden/keywarden/internal/logging"
	"github.com/keywarden/keywarden/internal/model"
	"github.com/keywarden/keywarden/internal/vaultkey"
)

// valuesState identifies the active mode of the values browser.
type valuesState int

const (
	valuesStateList valuesState = iota
	valuesStateAddName
	valuesStateAddValue
	valuesStateConfirmDelete
)

// valuesModel lists the encrypted workspace values and supports
// adding, revealing and deleting entries. Revealed plaintext lives
// only until the selection moves or the view is left.
type valuesModel struct {
	svc vaultkey.Service

	state  valuesState
	values []model.Value
	cursor int

	nameInput  textinput.Model
	valueInput textinput.Model

	revealedName  string
	revealedValue string

	errMsg    string
	statusMsg string

	width, height int
}

func newValuesModel(svc vaultkey.Service) *valuesModel {
	name := textinput.New()
	name.Placeholder = i18n.T("values.name_placeholder")
	name.CharLimit = 128
	name.Width = 40

	value := textinput.New()
	value.Placeholder = i18n.T("values.value_placeholder")
	value.CharLimit = 4096
	value.Width = 40
	value.EchoMode = textinput.EchoPassword

	m := &valuesModel{svc: svc, nameInput: name, valueInput: value}
	m.refresh()
	return m
}

// refresh reloads the value list from the vault.
func (m *valuesModel) refresh() {
	values, err := m.svc.ListValues()
	if err != nil {
		logging.Errorf("could not list vault values: %v", err)
		m.errMsg = fmt.Sprintf(i18n.T("values.list_failed"), err)
		return
	}
	m.values = values
	if m.cursor >= len(m.values) {
		m.cursor = max(0, len(m.values)-1)
	}
}

func (m *valuesModel) clearReveal() {
	m.revealedName = ""
	m.revealedValue = ""
}

func (m *valuesModel) Init() tea.Cmd {
	return nil
}

func (m *valuesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.state {
		case valuesStateList:
			return m.updateList(msg)
		case valuesStateAddName, valuesStateAddValue:
			return m.updateAdd(msg)
		case valuesStateConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
	}
	return m, nil
}

func (m *valuesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.clearReveal()
		return m, func() tea.Msg { return backToMenuMsg{} }
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clearReveal()
		}
	case "down", "j":
		if m.cursor < len(m.values)-1 {
			m.cursor++
			m.clearReveal()
		}
	case "a":
		m.state = valuesStateAddName
		m.errMsg = ""
		m.statusMsg = ""
		m.nameInput.SetValue("")
		m.valueInput.SetValue("")
		m.nameInput.Focus()
		return m, textinput.Blink
	case "d":
		if len(m.values) > 0 {
			m.state = valuesStateConfirmDelete
		}
	case "r":
		if len(m.values) == 0 {
			return m, nil
		}
		name := m.values[m.cursor].Name
		if m.revealedName == name {
			m.clearReveal()
			return m, nil
		}
		plaintext, err := m.svc.DecryptValue(name)
		if err != nil {
			logging.Errorf("could not decrypt value %q: %v", name, err)
			m.errMsg = fmt.Sprintf(i18n.T("values.decrypt_failed"), err)
			return m, nil
		}
		m.errMsg = ""
		m.revealedName = name
		m.revealedValue = plaintext
	}
	return m, nil
}

func (m *valuesModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = valuesStateList
		m.nameInput.Blur()
		m.valueInput.Blur()
		return m, nil
	case "enter":
		if m.state == valuesStateAddName {
			if strings.TrimSpace(m.nameInput.Value()) == "" {
				m.errMsg = i18n.T("values.name_required")
				return m, nil
			}
			m.errMsg = ""
			m.state = valuesStateAddValue
			m.nameInput.Blur()
			m.valueInput.Focus()
			return m, textinput.Blink
		}
		name := strings.TrimSpace(m.nameInput.Value())
		if err := m.svc.EncryptValue(name, m.valueInput.Value()); err != nil {
			logging.Errorf("could not encrypt value %q: %v", name, err)
			m.errMsg = fmt.Sprintf(i18n.T("values.encrypt_failed"), err)
			return m, nil
		}
		m.errMsg = ""
		m.statusMsg = fmt.Sprintf(i18n.T("values.stored"), name)
		m.state = valuesStateList
		m.valueInput.Blur()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	if m.state == valuesStateAddName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.valueInput, cmd = m.valueInput.Update(msg)
	}
	return m, cmd
}

func (m *valuesModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		name := m.values[m.cursor].Name
		if err := m.svc.DeleteValue(name); err != nil {
			m.errMsg = fmt.Sprintf(i18n.T("values.delete_failed"), err)
		} else {
			m.statusMsg = fmt.Sprintf(i18n.T("values.deleted"), name)
			m.clearReveal()
		}
		m.state = valuesStateList
		m.refresh()
	case "n", "esc", "q":
		m.state = valuesStateList
	}
	return m, nil
}

func (m *valuesModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🗝️  " + i18n.T("values.title")))
	b.WriteString("\n")

	switch m.state {
	case valuesStateAddName, valuesStateAddValue:
		b.WriteString(i18n.T("values.add_prompt"))
		b.WriteString("\n\n")
		b.WriteString(m.nameInput.View())
		b.WriteString("\n")
		b.WriteString(m.valueInput.View())
		b.WriteString("\n")
		if m.errMsg != "" {
			b.WriteString("\n" + errorStyle.Render(m.errMsg))
		}
		b.WriteString("\n" + helpStyle.Render(i18n.T("values.help_add")))
		return docStyle.Render(b.String())

	case valuesStateConfirmDelete:
		name := m.values[m.cursor].Name
		b.WriteString("\n" + specialStyle.Render(fmt.Sprintf(i18n.T("values.confirm_delete"), name)))
		b.WriteString("\n\n" + helpStyle.Render(i18n.T("values.help_confirm")))
		return docStyle.Render(b.String())
	}

	if len(m.values) == 0 {
		b.WriteString("\n" + helpStyle.Render(i18n.T("values.empty")))
	}
	for i, v := range m.values {
		cursor := "  "
		style := itemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := cursor + v.Name
		if m.revealedName == v.Name {
			line += "  " + specialStyle.Render(m.revealedValue)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.statusMsg))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("values.help_list")))
	return docStyle.Render(b.String())
}
