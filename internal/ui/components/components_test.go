// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the posyandu TUI.
package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/ui/styles"
)

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestWordWrap(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "halo dunia", 20, "halo dunia"},
		{"wraps", "satu dua tiga empat", 8, "satu dua\ntiga\nempat"},
		{"zero width passthrough", "apa saja", 0, "apa saja"},
		{"preserves newlines", "baris satu\nbaris dua", 20, "baris satu\nbaris dua"},
	}
	for _, tc := range cases {
		if got := wordWrap(tc.text, tc.width); got != tc.want {
			t.Errorf("%s: wordWrap = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMaxLineWidthCountsCells(t *testing.T) {
	// Emoji are two cells wide; byte length would say otherwise.
	if got := maxLineWidth("ab\n💉cd"); got != 4 {
		t.Errorf("maxLineWidth = %d, want 4", got)
	}
}

// =============================================================================
// MESSAGE BUBBLE TESTS
// =============================================================================

func TestMessageBubbleExpandsImageTags(t *testing.T) {
	theme := styles.NewTheme()
	img := model.NewImageAttachment("kms.png", []byte{1}, "image/png")

	turn := model.NewAssistantTurn("Lihat grafiknya di [IMAGE:0] ya.")
	b := NewMessageBubble(turn, theme)
	b.RefImages = []model.ImageAttachment{img}

	view := b.View()
	if !strings.Contains(view, "Gambar 1: kms.png") {
		t.Errorf("view should expand the image tag, got:\n%s", view)
	}
	if strings.Contains(view, "[IMAGE:0]") {
		t.Error("raw image tag should not survive rendering")
	}
}

func TestMessageBubbleOutOfRangeImageTag(t *testing.T) {
	theme := styles.NewTheme()
	turn := model.NewAssistantTurn("Perhatikan [IMAGE:5].")
	view := NewMessageBubble(turn, theme).View()
	if !strings.Contains(view, "Gambar 6") {
		t.Errorf("out-of-range tag should still render a badge, got:\n%s", view)
	}
}

func TestMessageBubbleSuggestedQuestions(t *testing.T) {
	theme := styles.NewTheme()
	turn := model.NewAssistantTurn("jawaban")
	turn.CategoryQuestions = []string{"Kapan jadwal berikutnya?"}

	view := NewMessageBubble(turn, theme).View()
	if !strings.Contains(view, "Kapan jadwal berikutnya?") {
		t.Error("suggested questions should render under the answer")
	}
}

func TestMessageBubbleRetryHint(t *testing.T) {
	theme := styles.NewTheme()
	b := NewMessageBubble(model.NewAssistantTurn("⚠️ API key tidak valid."), theme)
	b.IsError = true
	b.Retryable = true

	if !strings.Contains(b.View(), "mencoba lagi") {
		t.Error("retryable error should carry the retry hint")
	}
}

func TestMessageBubbleNilTurnIsSafe(t *testing.T) {
	theme := styles.NewTheme()
	b := NewMessageBubble(nil, theme)
	// Must not panic.
	_ = b.View()
}

// =============================================================================
// WELCOME CARD TESTS
// =============================================================================

func TestWelcomeCardShowsCatalog(t *testing.T) {
	theme := styles.NewTheme()
	w := NewWelcomeCard(theme)
	w.SetWidth(100)
	theme.SetSize(100, 30)

	view := w.View()
	for _, cat := range w.Categories() {
		if !strings.Contains(view, cat.Name) {
			t.Errorf("welcome view missing category %q", cat.Name)
		}
	}
	if len(w.QuickQuestions()) == 0 {
		t.Fatal("quick questions must not be empty")
	}
	if !strings.Contains(view, "Pertanyaan populer") {
		t.Error("welcome view missing quick questions section")
	}
}

// =============================================================================
// SESSION PICKER TESTS
// =============================================================================

func pickerSessions(n int) []*model.Session {
	sessions := make([]*model.Session, 0, n)
	for i := 0; i < n; i++ {
		s := model.NewSession("")
		s.Title = "Obrolan " + string(rune('A'+i))
		s.UpdatedAt = time.Now().Add(-time.Duration(i) * time.Minute)
		sessions = append(sessions, s)
	}
	return sessions
}

func TestSessionPickerCursor(t *testing.T) {
	p := NewSessionPicker(styles.NewTheme())
	p.SetSessions(pickerSessions(3))

	if p.Selected() == nil || p.Selected().Title != "Obrolan A" {
		t.Fatalf("initial selection = %v", p.Selected())
	}
	p.MoveDown()
	p.MoveDown()
	p.MoveDown() // clamped at the end
	if p.Selected().Title != "Obrolan C" {
		t.Errorf("selection after moves = %q", p.Selected().Title)
	}
	p.MoveUp()
	if p.Selected().Title != "Obrolan B" {
		t.Errorf("selection after up = %q", p.Selected().Title)
	}
}

func TestSessionPickerCursorSurvivesShrink(t *testing.T) {
	p := NewSessionPicker(styles.NewTheme())
	p.SetSessions(pickerSessions(3))
	p.MoveDown()
	p.MoveDown()

	p.SetSessions(pickerSessions(1))
	if p.Selected() == nil {
		t.Fatal("cursor must clamp into range when the list shrinks")
	}
}

func TestSessionPickerDeleteConfirmFlow(t *testing.T) {
	p := NewSessionPicker(styles.NewTheme())
	p.SetSessions(pickerSessions(2))

	p.BeginDelete()
	if !p.ConfirmingDelete() {
		t.Fatal("BeginDelete should open the confirmation")
	}
	if p.ConfirmChoice() {
		t.Error("confirmation must default to the safe choice")
	}
	p.ToggleConfirmChoice()
	if !p.ConfirmChoice() {
		t.Error("toggle should activate the destructive choice")
	}
	p.CancelDelete()
	if p.ConfirmingDelete() {
		t.Error("CancelDelete should dismiss the confirmation")
	}

	if !strings.Contains(p.View(), "Riwayat Obrolan") {
		t.Error("picker view missing header")
	}
}

func TestSessionPickerEmpty(t *testing.T) {
	p := NewSessionPicker(styles.NewTheme())
	p.SetSessions(nil)
	if p.Selected() != nil {
		t.Error("empty picker must have no selection")
	}
	if !strings.Contains(p.View(), "Belum ada riwayat") {
		t.Error("empty picker should say so")
	}
}
