// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the posyandu TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/prompt"
	"github.com/jeranaias/posyandu-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN COMPONENT
// =============================================================================

const welcomeLogo = `
 ___  __   __       __        __
|__ )/  \ (_  \_/  /\  |\ | |  \ /  \
|   \\__/ __)  |  /--\ | \| |__/ \__/
          M E N U R`

// WelcomeCard renders the landing view: logo, category cards, and the
// quick questions a first-time visitor can pick from.
type WelcomeCard struct {
	Width            int
	SelectedCategory int // -1 when no card is highlighted
	SelectedQuestion int // -1 when no question is highlighted

	categories []model.Category
	theme      *styles.Theme
}

// NewWelcomeCard creates a welcome card with the full category catalog.
func NewWelcomeCard(theme *styles.Theme) *WelcomeCard {
	return &WelcomeCard{
		Width:            80,
		SelectedCategory: -1,
		SelectedQuestion: -1,
		categories:       prompt.Categories(),
		theme:            theme,
	}
}

// Categories returns the catalog backing the card, in display order.
func (w *WelcomeCard) Categories() []model.Category {
	return w.categories
}

// QuickQuestions returns the starter questions, in display order.
func (w *WelcomeCard) QuickQuestions() []string {
	return append([]string(nil), prompt.QuickQuestions...)
}

// SetWidth sets the render width.
func (w *WelcomeCard) SetWidth(width int) {
	w.Width = width
}

// View renders the welcome screen.
func (w *WelcomeCard) View() string {
	var sections []string

	logo := w.theme.WelcomeLogo.Render(strings.TrimPrefix(welcomeLogo, "\n"))
	sections = append(sections, logo)

	info := w.theme.WelcomeInfo.Render(wordWrap(
		"Asisten AI Posyandu Menur siap membantu seputar kesehatan ibu dan anak. "+
			"Pilih topik konsultasi atau langsung ketik pertanyaan Anda.",
		minInt(w.Width-8, 70)))
	sections = append(sections, "", info, "")

	sections = append(sections, w.renderCategoryCards(), "")
	sections = append(sections, w.renderQuickQuestions())

	hint := w.theme.SessionMeta.Render("tab pilih topik  |  enter kirim  |  ctrl+l riwayat  |  ctrl+c keluar")
	sections = append(sections, "", hint)

	box := w.theme.WelcomeBox.Width(minInt(w.Width-4, 90))
	return box.Render(lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (w *WelcomeCard) renderCategoryCards() string {
	cards := make([]string, 0, len(w.categories))
	for i, cat := range w.categories {
		style := w.theme.CategoryCard
		if i == w.SelectedCategory {
			style = w.theme.CategorySelect
		}
		cards = append(cards, style.Render(cat.Icon+" "+cat.Name))
	}

	// Narrow terminals stack the cards vertically.
	if w.theme.GetLayoutMode() == styles.LayoutNarrow {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (w *WelcomeCard) renderQuickQuestions() string {
	questions := w.QuickQuestions()
	lines := make([]string, 0, len(questions)+1)
	lines = append(lines, w.theme.SessionMeta.Render("Pertanyaan populer:"))
	for i, q := range questions {
		style := w.theme.QuickQuestion
		if i == w.SelectedQuestion {
			style = w.theme.SuggestedActive
		}
		lines = append(lines, style.Render(q))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
