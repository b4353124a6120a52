// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the posyandu TUI.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar renders the bottom status line: active category, session
// info, busy state, and the key shortcuts that matter right now.
type StatusBar struct {
	Width        int
	Category     *model.Category
	SessionTitle string
	SessionCount int
	Busy         bool
	PendingImgs  int
	StatusMsg    string // transient, overrides shortcuts when set

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth sets the render width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	var left []string

	if s.Category != nil {
		left = append(left, s.theme.CategoryTag.Render(s.Category.Icon+" "+s.Category.Name))
	}
	if s.SessionTitle != "" {
		title := runewidth.Truncate(s.SessionTitle, 28, "...")
		left = append(left, s.theme.SessionTitle.Render(title))
	}
	if s.SessionCount > 0 {
		left = append(left, s.theme.SessionMeta.Render(strconv.Itoa(s.SessionCount)+" obrolan"))
	}
	if s.PendingImgs > 0 {
		left = append(left, s.theme.ImageBadge.Render(strconv.Itoa(s.PendingImgs)+" gambar"))
	}
	if s.Busy {
		left = append(left, s.theme.ThinkingText.Render("memproses..."))
	}

	right := s.StatusMsg
	if right == "" {
		right = s.renderShortcuts()
	}

	leftText := strings.Join(left, "  ")
	gap := s.Width - lipgloss.Width(leftText) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.Width(s.Width).Render(
		leftText + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderShortcuts() string {
	pairs := []struct{ key, desc string }{
		{"ctrl+n", "baru"},
		{"ctrl+l", "riwayat"},
		{"ctrl+g", "gambar"},
		{"ctrl+c", "keluar"},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts,
			s.theme.ShortcutKey.Render(p.key)+" "+s.theme.ShortcutDesc.Render(p.desc))
	}
	return strings.Join(parts, "  ")
}
