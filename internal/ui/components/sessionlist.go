// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the posyandu TUI.
package components

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/storage"
	"github.com/jeranaias/posyandu-tui/internal/ui/styles"
)

// =============================================================================
// SESSION PICKER COMPONENT
// =============================================================================

// SessionPicker renders the session history overlay: sessions bucketed
// by recency with a movable cursor, plus an inline delete confirmation.
type SessionPicker struct {
	Width  int
	Height int

	sessions []*model.Session
	flat     []*model.Session // cursor order, matches rendered order
	cursor   int

	confirmDelete bool // true while the delete prompt is showing
	confirmYes    bool

	theme *styles.Theme
}

// NewSessionPicker creates an empty picker.
func NewSessionPicker(theme *styles.Theme) *SessionPicker {
	return &SessionPicker{Width: 80, Height: 20, theme: theme}
}

// SetSessions replaces the picker contents, keeping the cursor in range.
func (p *SessionPicker) SetSessions(sessions []*model.Session) {
	p.sessions = sessions

	p.flat = p.flat[:0]
	labels, groups := storage.GroupSessions(sessions, time.Now())
	for _, label := range labels {
		p.flat = append(p.flat, groups[label]...)
	}

	if p.cursor >= len(p.flat) {
		p.cursor = len(p.flat) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// SetSize sets the render dimensions.
func (p *SessionPicker) SetSize(width, height int) {
	p.Width = width
	p.Height = height
}

// MoveUp moves the cursor one entry up.
func (p *SessionPicker) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor one entry down.
func (p *SessionPicker) MoveDown() {
	if p.cursor < len(p.flat)-1 {
		p.cursor++
	}
}

// Selected returns the session under the cursor, or nil when empty.
func (p *SessionPicker) Selected() *model.Session {
	if p.cursor < 0 || p.cursor >= len(p.flat) {
		return nil
	}
	return p.flat[p.cursor]
}

// =============================================================================
// DELETE CONFIRMATION
// =============================================================================

// BeginDelete opens the delete confirmation for the selected session.
func (p *SessionPicker) BeginDelete() {
	if p.Selected() == nil {
		return
	}
	p.confirmDelete = true
	p.confirmYes = false
}

// CancelDelete dismisses the confirmation without deleting.
func (p *SessionPicker) CancelDelete() {
	p.confirmDelete = false
}

// ConfirmingDelete reports whether the confirmation prompt is showing.
func (p *SessionPicker) ConfirmingDelete() bool {
	return p.confirmDelete
}

// ToggleConfirmChoice flips between the Hapus and Batal buttons.
func (p *SessionPicker) ToggleConfirmChoice() {
	p.confirmYes = !p.confirmYes
}

// ConfirmChoice reports whether the destructive button is active.
func (p *SessionPicker) ConfirmChoice() bool {
	return p.confirmYes
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the picker.
func (p *SessionPicker) View() string {
	if len(p.flat) == 0 {
		return p.theme.SessionList.Render("Belum ada riwayat obrolan.")
	}

	var lines []string
	lines = append(lines, p.theme.HeaderTitle.Render("Riwayat Obrolan"), "")

	labels, groups := storage.GroupSessions(p.sessions, time.Now())
	idx := 0
	for _, label := range labels {
		lines = append(lines, p.theme.SessionGroup.Render(label))
		for _, sess := range groups[label] {
			lines = append(lines, p.renderEntry(sess, idx == p.cursor))
			idx++
		}
	}

	lines = append(lines, "",
		p.theme.SessionMeta.Render("enter buka  |  d hapus  |  esc kembali"))

	if p.confirmDelete {
		lines = append(lines, "", p.renderConfirm())
	}

	return p.theme.SessionList.Width(minInt(p.Width-4, 70)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (p *SessionPicker) renderEntry(sess *model.Session, selected bool) string {
	title := runewidth.Truncate(sess.Title, minInt(p.Width-30, 40), "...")
	meta := sess.UpdatedAt.Format("15:04") + " - " +
		strconv.Itoa(sess.TurnCount()) + " pesan"

	style := p.theme.SessionItem
	if selected {
		style = p.theme.SessionItemSelected
	}
	return style.Render(title) + " " + p.theme.SessionMeta.Render(meta)
}

func (p *SessionPicker) renderConfirm() string {
	sess := p.Selected()
	if sess == nil {
		return ""
	}

	title := runewidth.Truncate(sess.Title, 30, "...")
	var buttons string
	if p.confirmYes {
		buttons = p.theme.ConfirmButtonActive.Render("Hapus") +
			p.theme.ConfirmButton.Render("Batal")
	} else {
		buttons = p.theme.ConfirmButton.Render("Hapus") +
			p.theme.ConfirmButtonActive.Render("Batal")
	}

	return p.theme.ConfirmBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		p.theme.ConfirmTitle.Render("Hapus obrolan?"),
		title,
		"",
		buttons))
}
