// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/pipeline"
	"github.com/jeranaias/posyandu-tui/internal/ui/components"
	"github.com/jeranaias/posyandu-tui/internal/util"
)

// View renders the chat interface.
func (m Model) View() string {
	if m.lastError != nil {
		return m.renderError()
	}

	switch m.mode {
	case viewWelcome:
		return m.renderWelcome()
	case viewSessions:
		return m.renderSessions()
	default:
		return m.renderChat()
	}
}

// =============================================================================
// SCREEN LAYOUTS
// =============================================================================

func (m Model) renderWelcome() string {
	parts := []string{
		m.welcome.View(),
		"",
		m.renderInput(),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderSessions() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.picker.View(),
		m.renderStatusBar(),
	)
}

func (m Model) renderChat() string {
	parts := []string{
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	}
	if m.showHelp {
		parts = append(parts, m.renderHelp())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Posyandu Menur")
	subtitle := m.theme.HeaderSubtitle.Render("Asisten Kesehatan Ibu & Anak")
	header := title + "  " + subtitle
	if m.width > 0 {
		return m.theme.Header.Width(m.width - 2).Render(header)
	}
	return m.theme.Header.Render(header)
}

func (m Model) renderInput() string {
	var parts []string

	if len(m.pending) > 0 {
		chips := make([]string, 0, len(m.pending))
		for _, img := range m.pending {
			chips = append(chips, m.theme.AttachmentChip.Render("[] "+img.Name))
		}
		parts = append(parts, strings.Join(chips, " "))
	}

	if m.busy {
		parts = append(parts, m.theme.Spinner.Render(m.spinner.View())+" "+
			m.theme.ThinkingText.Render("Asisten sedang menyiapkan jawaban..."))
	} else {
		parts = append(parts, m.input.View())
	}

	style := m.theme.InputContainer
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderStatusBar() string {
	m.statusBar.Category = m.pipe.Category()
	m.statusBar.Busy = m.busy
	m.statusBar.PendingImgs = len(m.pending)
	m.statusBar.StatusMsg = m.statusMsg
	m.statusBar.SessionCount = m.store.Count()
	if sess := m.store.Current(); sess != nil {
		m.statusBar.SessionTitle = sess.Title
	}
	if m.width > 0 {
		m.statusBar.SetWidth(m.width)
	}
	return m.statusBar.View()
}

func (m Model) renderError() string {
	box := m.theme.ErrorBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.ErrorTitle.Render(m.lastError.Title),
		"",
		m.theme.ErrorMessage.Render(m.lastError.Message),
		"",
		m.theme.SessionMeta.Render("tekan tombol apa saja untuk menutup"),
	))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m Model) renderHelp() string {
	var lines []string
	for _, group := range m.keyMap.FullHelp() {
		var parts []string
		for _, b := range group {
			parts = append(parts,
				m.theme.ShortcutKey.Render(b.Help().Key)+" "+
					m.theme.ShortcutDesc.Render(b.Help().Desc))
		}
		lines = append(lines, strings.Join(parts, "   "))
	}
	return m.theme.Container.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport re-renders the active session into the viewport.
func (m *Model) refreshViewport() {
	sess := m.store.Current()
	if sess == nil {
		m.viewport.SetContent("")
		return
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	blocks := make([]string, 0, len(sess.Messages))
	for i := range sess.Messages {
		blocks = append(blocks, m.renderTurn(sess.Messages, i, width))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (m *Model) renderTurn(turns []*model.Turn, idx int, width int) string {
	turn := turns[idx]

	bubble := components.NewMessageBubble(turn, m.theme)
	bubble.SetWidth(width)

	if turn.Role == model.RoleAssistant {
		bubble.RefImages = referenceImagesFor(turns, idx)
		if pipeline.LooksRetryable(turn) {
			bubble.IsError = strings.Contains(turn.Content, "⚠️") ||
				strings.HasPrefix(turn.Content, "Maaf, terjadi kesalahan")
			bubble.Retryable = idx == len(turns)-1
		} else if m.renderer != nil {
			// Healthy answers are Markdown; some providers ship
			// literal \n escapes, so unescape before rendering.
			content := util.UnescapeLiterals(turn.Content)
			if rendered, err := m.renderer.Render(content); err == nil {
				display := *turn
				display.Content = strings.TrimRight(rendered, "\n")
				bubble.Turn = &display
			}
		}
	}
	return bubble.View()
}
