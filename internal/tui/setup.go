// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/keywarden/keywarden/internal/i18n"
	"github.com/keywarden/keywarden/internal/logging"
	"github.com/keywarden/keywarden/internal/vaultkey"
)

// setupState identifies the active step of the master key setup flow.
type setupState int

const (
	setupStateChoose setupState = iota
	setupStateGenerate
	setupStateImport
)

// copiedAckDuration is how long the "copied" acknowledgment stays
// visible after the key is copied to the clipboard.
const copiedAckDuration = 2 * time.Second

// Choose menu entries.
const (
	chooseGenerate = iota
	chooseImport
	chooseCancel
)

// setupModel is the setup flow controller. It mediates between user
// input and the encryption service and never retains key material
// beyond what is needed for the current render: displayedKey mirrors
// the service's MasterKeyForDisplay and is dropped on Back/close.
type setupModel struct {
	svc vaultkey.Service

	state  setupState
	cursor int

	// busy is true while a service call is outstanding. It gates every
	// action that would start a second call; only Back and Cancel stay
	// available.
	busy bool

	// reqSeq tags outstanding service calls. A completion carrying a
	// stale sequence (the flow was reset, closed, or navigated away in
	// the meantime) is discarded instead of mutating fresh state.
	reqSeq int

	// Generate state
	displayedKey string
	confirmed    bool
	storeErr     string
	copied       bool
	copySeq      int

	// Import state
	importInput textinput.Model
	importErr   string

	// Choose state
	chooseErr string

	width, height int
}

// newSetupModel creates the controller in the Choose state.
func newSetupModel(svc vaultkey.Service) *setupModel {
	ti := textinput.New()
	ti.Placeholder = i18n.T("setup.import_placeholder")
	ti.CharLimit = 256
	ti.Width = 52
	return &setupModel{svc: svc, importInput: ti}
}

func (m *setupModel) Init() tea.Cmd {
	return nil
}

// --- Commands and Messages ---

// setupClosedMsg tells the parent model the dialog finished, either by
// cancellation or by a successful store/import.
type setupClosedMsg struct {
	completed bool
}

type setupKeyGeneratedMsg struct {
	seq int
	key string
	err error
}

type setupKeyStoredMsg struct {
	seq int
	err error
}

type setupKeyImportedMsg struct {
	seq int
	err error
}

type setupCopiedMsg struct {
	seq int
	err error
}

type setupCopyAckExpiredMsg struct {
	seq int
}

// generateKeyCmd asks the service for a fresh master key.
func generateKeyCmd(svc vaultkey.Service, seq int) tea.Cmd {
	return func() tea.Msg {
		err := svc.GenerateMasterKey()
		return setupKeyGeneratedMsg{seq: seq, key: svc.MasterKeyForDisplay(), err: err}
	}
}

// storeKeyCmd persists the confirmed key.
func storeKeyCmd(svc vaultkey.Service, key string, seq int) tea.Cmd {
	return func() tea.Msg {
		return setupKeyStoredMsg{seq: seq, err: svc.StoreMasterKey(key)}
	}
}

// importKeyCmd validates and persists a pasted key.
func importKeyCmd(svc vaultkey.Service, key string, seq int) tea.Cmd {
	return func() tea.Msg {
		return setupKeyImportedMsg{seq: seq, err: svc.ImportMasterKey(key)}
	}
}

// copyKeyCmd writes the displayed key to the clipboard.
func copyKeyCmd(key string, seq int) tea.Cmd {
	return func() tea.Msg {
		return setupCopiedMsg{seq: seq, err: clipboard.WriteAll(key)}
	}
}

func closeSetupCmd(completed bool) tea.Cmd {
	return func() tea.Msg { return setupClosedMsg{completed: completed} }
}

// reset restores all local state to defaults and invalidates any
// outstanding service call or copy acknowledgment timer.
func (m *setupModel) reset() {
	m.state = setupStateChoose
	m.cursor = 0
	m.busy = false
	m.reqSeq++
	m.displayedKey = ""
	m.confirmed = false
	m.storeErr = ""
	m.copied = false
	m.copySeq++
	m.importInput.SetValue("")
	m.importInput.Blur()
	m.importErr = ""
	m.chooseErr = ""
}

// cancel tears the flow down through the service and closes the dialog.
func (m *setupModel) cancel() (tea.Model, tea.Cmd) {
	m.svc.CancelSetup()
	m.reset()
	return m, closeSetupCmd(false)
}

func (m *setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case setupKeyGeneratedMsg:
		if msg.seq != m.reqSeq {
			return m, nil // stale completion, the flow moved on
		}
		m.busy = false
		if msg.err != nil {
			logging.Errorf("master key generation failed: %v", msg.err)
			m.chooseErr = i18n.T("setup.generate_failed")
			return m, nil
		}
		m.state = setupStateGenerate
		m.displayedKey = msg.key
		m.confirmed = false
		m.storeErr = ""
		return m, nil

	case setupKeyStoredMsg:
		if msg.seq != m.reqSeq {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			// Stay in Generate and keep the user's confirmation; the
			// displayed key must survive a storage failure.
			logging.Errorf("master key storage failed: %v", msg.err)
			m.storeErr = fmt.Sprintf(i18n.T("setup.store_failed"), msg.err)
			return m, nil
		}
		m.reset()
		return m, closeSetupCmd(true)

	case setupKeyImportedMsg:
		if msg.seq != m.reqSeq {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			logging.Errorf("master key import failed: %v", msg.err)
			var importErr *vaultkey.ImportError
			if errors.As(msg.err, &importErr) && importErr.Message() != "" {
				m.importErr = importErr.Message()
			} else {
				m.importErr = i18n.T("setup.import_failed")
			}
			return m, nil
		}
		m.reset()
		return m, closeSetupCmd(true)

	case setupCopiedMsg:
		if msg.seq != m.copySeq {
			return m, nil
		}
		if msg.err != nil {
			logging.Warnf("clipboard copy failed: %v", msg.err)
			return m, nil
		}
		m.copied = true
		seq := m.copySeq
		return m, tea.Tick(copiedAckDuration, func(time.Time) tea.Msg {
			return setupCopyAckExpiredMsg{seq: seq}
		})

	case setupCopyAckExpiredMsg:
		// A newer copy replaced the timer; only the latest one clears.
		if msg.seq == m.copySeq {
			m.copied = false
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case setupStateChoose:
			return m.updateChoose(msg)
		case setupStateGenerate:
			return m.updateGenerate(msg)
		case setupStateImport:
			return m.updateImport(msg)
		}
	}
	return m, nil
}

func (m *setupModel) updateChoose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m.cancel()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < chooseCancel {
			m.cursor++
		}
		return m, nil
	case "g":
		return m.startGenerate()
	case "i":
		return m.enterImport()
	case "enter":
		switch m.cursor {
		case chooseGenerate:
			return m.startGenerate()
		case chooseImport:
			return m.enterImport()
		case chooseCancel:
			return m.cancel()
		}
	}
	return m, nil
}

// startGenerate kicks off key generation unless a call is already
// outstanding.
func (m *setupModel) startGenerate() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.chooseErr = ""
	m.reqSeq++
	return m, generateKeyCmd(m.svc, m.reqSeq)
}

// enterImport is a pure local transition; no service call is made.
func (m *setupModel) enterImport() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.state = setupStateImport
	m.importInput.SetValue("")
	m.importErr = ""
	m.importInput.Focus()
	return m, textinput.Blink
}

func (m *setupModel) updateGenerate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.cancel()
	case "esc":
		// Back to Choose. The controller drops its view of the key;
		// re-entering Generate requires a fresh generation. An in-flight
		// store resolution becomes stale and is discarded.
		m.reqSeq++
		m.busy = false
		m.state = setupStateChoose
		m.displayedKey = ""
		m.confirmed = false
		m.storeErr = ""
		m.copied = false
		m.copySeq++
		return m, nil
	case "c":
		if m.displayedKey == "" {
			return m, nil
		}
		m.copySeq++
		return m, copyKeyCmd(m.displayedKey, m.copySeq)
	case " ":
		if !m.busy {
			m.confirmed = !m.confirmed
		}
		return m, nil
	case "enter":
		// Guarded: storage requires an explicit confirmation and a
		// displayed key, and no outstanding call.
		if m.busy || !m.confirmed || m.displayedKey == "" {
			return m, nil
		}
		m.busy = true
		m.storeErr = ""
		m.reqSeq++
		return m, storeKeyCmd(m.svc, m.displayedKey, m.reqSeq)
	}
	return m, nil
}

func (m *setupModel) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.cancel()
	case "esc":
		// Back to Choose; the pending text and error don't outlive the
		// Import state. An in-flight import resolution becomes stale.
		m.reqSeq++
		m.busy = false
		m.state = setupStateChoose
		m.importInput.SetValue("")
		m.importInput.Blur()
		m.importErr = ""
		return m, nil
	case "enter":
		if m.busy {
			return m, nil
		}
		trimmed := strings.TrimSpace(m.importInput.Value())
		if trimmed == "" {
			// Guard violation, handled locally; the service is not called.
			m.importErr = i18n.T("setup.import_empty")
			return m, nil
		}
		m.busy = true
		m.importErr = ""
		m.reqSeq++
		return m, importKeyCmd(m.svc, trimmed, m.reqSeq)
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

// --- Views ---

func (m *setupModel) View() string {
	var body string
	switch m.state {
	case setupStateChoose:
		body = m.viewChoose()
	case setupStateGenerate:
		body = m.viewGenerate()
	case setupStateImport:
		body = m.viewImport()
	}

	box := dialogBoxStyle.Render(body)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m *setupModel) viewChoose() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔐 " + i18n.T("setup.title")))
	b.WriteString("\n")
	b.WriteString(i18n.T("setup.intro"))
	b.WriteString("\n\n")

	choices := []string{
		i18n.T("setup.option_generate"),
		i18n.T("setup.option_import"),
		i18n.T("setup.option_cancel"),
	}
	for i, choice := range choices {
		cursor := "  "
		style := itemStyle
		if m.cursor == i {
			cursor = "> "
			style = selectedItemStyle
		}
		b.WriteString(style.Render(cursor + choice))
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString("\n" + specialStyle.Render(i18n.T("setup.generating")))
	}
	if m.chooseErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.chooseErr))
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("setup.help_choose")))
	return b.String()
}

func (m *setupModel) viewGenerate() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔑 " + i18n.T("setup.generated_title")))
	b.WriteString("\n")
	b.WriteString(specialStyle.Render(i18n.T("setup.save_warning")))
	b.WriteString("\n\n")
	b.WriteString(keyBoxStyle.Render(m.displayedKey))
	b.WriteString("\n\n")

	checkbox := "[ ]"
	if m.confirmed {
		checkbox = "[x]"
	}
	b.WriteString(fmt.Sprintf("%s %s", checkbox, i18n.T("setup.confirm_saved")))
	b.WriteString("\n")

	button := buttonStyle
	if m.confirmed && !m.busy {
		button = activeButtonStyle
	}
	b.WriteString(button.Render(i18n.T("setup.enable_encryption")))

	if m.copied {
		b.WriteString("\n" + statusMessageStyle.Render(i18n.T("setup.copied")))
	}
	if m.busy {
		b.WriteString("\n" + specialStyle.Render(i18n.T("setup.storing")))
	}
	if m.storeErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.storeErr))
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("setup.help_generate")))
	return b.String()
}

func (m *setupModel) viewImport() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📥 " + i18n.T("setup.import_title")))
	b.WriteString("\n")
	b.WriteString(i18n.T("setup.import_prompt"))
	b.WriteString("\n\n")
	b.WriteString(m.importInput.View())
	b.WriteString("\n")

	if m.busy {
		b.WriteString("\n" + specialStyle.Render(i18n.T("setup.importing")))
	}
	if m.importErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.importErr))
	}
	b.WriteString("\n" + helpStyle.Render(i18n.T("setup.help_import")))
	return b.String()
}
