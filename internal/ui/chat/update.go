// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/posyandu-tui/internal/pipeline"
	"github.com/jeranaias/posyandu-tui/internal/prompt"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ResponseMsg:
		return m.handleResponse(msg)

	case StoreChangedMsg:
		m.picker.SetSessions(m.store.Sessions())
		m.refreshViewport()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Text
		return m, nil

	case ClearStatusMsg:
		m.statusMsg = ""
		return m, nil

	case ErrorMsg:
		m.lastError = &msg
		return m, nil

	case ErrorDismissMsg:
		m.lastError = nil
		m.input.Focus()
		return m, textinput.Blink

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateChildren(msg)
}

// updateChildren forwards unhandled messages to the focused widgets.
func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	headerHeight := 3
	inputHeight := 3
	statusHeight := 1
	m.viewport.Width = msg.Width
	m.viewport.Height = msg.Height - headerHeight - inputHeight - statusHeight
	if m.viewport.Height < 5 {
		m.viewport.Height = 5
	}

	m.input.Width = msg.Width - 6
	m.welcome.SetWidth(msg.Width)
	m.picker.SetSize(msg.Width, msg.Height)
	m.statusBar.SetWidth(msg.Width)

	wrap := msg.Width - 12
	if wrap < 40 {
		wrap = 40
	}
	if renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	); err == nil {
		m.renderer = renderer
	}

	m.refreshViewport()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works.
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	if m.lastError != nil {
		return m, func() tea.Msg { return ErrorDismissMsg{} }
	}

	switch m.mode {
	case viewWelcome:
		return m.handleWelcomeKey(msg)
	case viewSessions:
		return m.handleSessionsKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

func (m Model) handleWelcomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.NextPick):
		m.cycleWelcomePick(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PrevPick):
		m.cycleWelcomePick(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.Sessions):
		return m.openSessions()

	case key.Matches(msg, m.keyMap.Submit):
		// A highlighted quick question submits directly.
		if q := m.selectedQuickQuestion(); q != "" && strings.TrimSpace(m.input.Value()) == "" {
			m.input.SetValue(stripLeadingEmoji(q))
		}
		m.applyWelcomeCategory()
		m.mode = viewChat
		m.refreshViewport()
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.ConfirmingDelete() {
		switch {
		case key.Matches(msg, m.keyMap.NextPick), key.Matches(msg, m.keyMap.PrevPick):
			m.picker.ToggleConfirmChoice()
			return m, nil
		case key.Matches(msg, m.keyMap.Cancel):
			m.picker.CancelDelete()
			return m, nil
		case key.Matches(msg, m.keyMap.Submit):
			m.picker.CancelDelete()
			if m.picker.ConfirmChoice() {
				return m.deleteSelectedSession()
			}
			return m, nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Up):
		m.picker.MoveUp()
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.picker.MoveDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Delete):
		m.picker.BeginDelete()
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel), key.Matches(msg, m.keyMap.Sessions):
		m.mode = viewChat
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keyMap.Submit):
		if sess := m.picker.Selected(); sess != nil {
			if err := m.store.SwitchSession(sess.ID); err != nil {
				m.logger.Warn("switch session failed", zap.String("session_id", sess.ID), zap.Error(err))
			}
		}
		m.mode = viewChat
		m.refreshViewport()
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keyMap.NewChat):
		return m.startNewSession()

	case key.Matches(msg, m.keyMap.Sessions):
		return m.openSessions()

	case key.Matches(msg, m.keyMap.Retry):
		return m.retryLastAnswer()

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keyMap.Up), key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMIT / RESPONSE
// =============================================================================

// submitInput dispatches the input line: slash commands run locally,
// anything else goes through the pipeline.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())

	if strings.HasPrefix(content, "/") {
		return m.handleCommand(content)
	}
	if content == "" && len(m.pending) == 0 {
		return m, nil
	}
	if m.busy {
		return m, statusCmd("Masih memproses, tunggu sebentar...")
	}

	images := m.pending
	m.pending = nil
	m.input.Reset()
	m.busy = true
	m.mode = viewChat
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.sendCmd(content, images), m.spinner.Tick)
}

func (m Model) handleResponse(msg ResponseMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.Err != nil {
		switch msg.Err {
		case pipeline.ErrBusy:
			return m, statusCmd("Masih memproses, tunggu sebentar...")
		case pipeline.ErrEmptyInput:
			return m, nil
		default:
			m.lastError = &ErrorMsg{
				Title:   "Gagal mengirim pesan",
				Message: msg.Err.Error(),
			}
			return m, nil
		}
	}

	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) startNewSession() (tea.Model, tea.Cmd) {
	greeting := ""
	if cat := m.pipe.Category(); cat != nil {
		greeting = cat.Greeting
	}
	if _, err := m.store.CreateSession(greeting); err != nil {
		m.lastError = &ErrorMsg{Title: "Gagal membuat obrolan", Message: err.Error()}
		return m, nil
	}
	m.mode = viewChat
	m.refreshViewport()
	return m, statusCmd("Obrolan baru dimulai")
}

func (m Model) openSessions() (tea.Model, tea.Cmd) {
	m.picker.SetSessions(m.store.Sessions())
	m.mode = viewSessions
	m.input.Blur()
	return m, nil
}

func (m Model) deleteSelectedSession() (tea.Model, tea.Cmd) {
	sess := m.picker.Selected()
	if sess == nil {
		return m, nil
	}
	if err := m.store.DeleteSession(sess.ID); err != nil {
		m.lastError = &ErrorMsg{Title: "Gagal menghapus obrolan", Message: err.Error()}
		return m, nil
	}
	m.picker.SetSessions(m.store.Sessions())
	m.refreshViewport()
	return m, statusCmd("Obrolan dihapus")
}

// retryLastAnswer re-runs the most recent assistant turn that looks
// like a failure.
func (m Model) retryLastAnswer() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, statusCmd("Masih memproses, tunggu sebentar...")
	}
	sess := m.store.Current()
	if sess == nil {
		return m, nil
	}
	for i := sess.TurnCount() - 1; i > 0; i-- {
		if pipeline.LooksRetryable(sess.Messages[i]) {
			m.busy = true
			m.refreshViewport()
			return m, tea.Batch(m.retryCmd(i), m.spinner.Tick)
		}
	}
	return m, statusCmd("Tidak ada jawaban yang perlu diulang")
}

// =============================================================================
// WELCOME HELPERS
// =============================================================================

// cycleWelcomePick advances the welcome highlight through category
// cards first, then quick questions.
func (m *Model) cycleWelcomePick(dir int) {
	nCats := len(m.welcome.Categories())
	nQuick := len(m.welcome.QuickQuestions())
	total := nCats + nQuick
	if total == 0 {
		return
	}

	pos := -1
	if m.welcome.SelectedCategory >= 0 {
		pos = m.welcome.SelectedCategory
	} else if m.welcome.SelectedQuestion >= 0 {
		pos = nCats + m.welcome.SelectedQuestion
	}

	pos = ((pos+dir)%total + total) % total
	if pos < nCats {
		m.welcome.SelectedCategory = pos
		m.welcome.SelectedQuestion = -1
	} else {
		m.welcome.SelectedCategory = -1
		m.welcome.SelectedQuestion = pos - nCats
	}
}

func (m *Model) applyWelcomeCategory() {
	if m.welcome.SelectedCategory < 0 {
		return
	}
	cats := m.welcome.Categories()
	if m.welcome.SelectedCategory >= len(cats) {
		return
	}
	m.pipe.SetCategory(prompt.CategoryByID(cats[m.welcome.SelectedCategory].ID))
}

func (m *Model) selectedQuickQuestion() string {
	qs := m.welcome.QuickQuestions()
	if m.welcome.SelectedQuestion < 0 || m.welcome.SelectedQuestion >= len(qs) {
		return ""
	}
	return qs[m.welcome.SelectedQuestion]
}

// stripLeadingEmoji drops the decorative emoji prefix from a quick
// question so the submitted text reads like something a user typed.
func stripLeadingEmoji(q string) string {
	fields := strings.Fields(q)
	if len(fields) > 1 && len(fields[0]) > 0 && fields[0][0] > 127 {
		return strings.Join(fields[1:], " ")
	}
	return q
}
