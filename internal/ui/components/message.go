// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the posyandu TUI.
package components

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// imageTagPattern matches the inline image references an answer may
// carry, e.g. [IMAGE:0]. The index is zero-based.
var imageTagPattern = regexp.MustCompile(`\[IMAGE:(\d+)\]`)

// MessageBubble renders one conversation turn as a styled bubble.
type MessageBubble struct {
	Turn          *model.Turn
	Width         int
	ShowTimestamp bool
	IsError       bool
	Retryable     bool

	// RefImages are the attachments the turn's [IMAGE:n] tags refer
	// to. For user turns these are the turn's own attachments; for an
	// assistant answer they come from the preceding user turn.
	RefImages []model.ImageAttachment

	theme *styles.Theme
}

// NewMessageBubble creates a bubble for one turn.
func NewMessageBubble(turn *model.Turn, theme *styles.Theme) *MessageBubble {
	if turn == nil {
		turn = model.NewAssistantTurn("")
	}
	return &MessageBubble{
		Turn:          turn,
		Width:         80,
		ShowTimestamp: true,
		RefImages:     turn.Images,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	switch b.Turn.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantBubble()
	default:
		return b.renderGenericBubble()
	}
}

// ==========================================================================
// USER BUBBLE - Sky tones, right-aligned feel
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Turn.Content
	if content == "" && b.Turn.HasImages() {
		content = "(gambar terlampir)"
	}
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Background(styles.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 2).
		Width(contentWidth)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render(strings.ToLower(b.Turn.Role.DisplayName()))
	if b.ShowTimestamp {
		header += " " + b.renderTimestamp()
	}

	// Attachment chips below the bubble.
	var chips string
	if b.Turn.HasImages() {
		chips = b.renderAttachmentChips()
	}

	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	parts := []string{marginStyle.Render(header), marginStyle.Render(bubble)}
	if chips != "" {
		parts = append(parts, marginStyle.Render(chips))
	}
	return lipgloss.JoinVertical(lipgloss.Right, parts...)
}

// ==========================================================================
// ASSISTANT BUBBLE - Teal tones, left-aligned. Error answers get the
// rose treatment so a failed response never masquerades as advice.
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.expandImageTags(b.Turn.Content)
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.AssistantBubbleFg).
		Background(styles.AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.AssistantBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		MarginRight(4)

	if b.IsError {
		bubbleStyle = bubbleStyle.
			Foreground(styles.ErrorBubbleFg).
			Background(styles.ErrorBubbleBg).
			BorderForeground(styles.ErrorBubbleBorder)
	}

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render(strings.ToLower(b.Turn.Role.DisplayName()))
	if b.ShowTimestamp {
		header += " " + b.renderTimestamp()
	}

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubble)

	if len(b.Turn.CategoryQuestions) > 0 {
		result = lipgloss.JoinVertical(lipgloss.Left, result, b.renderSuggestedQuestions())
	}
	if b.Retryable {
		hint := b.theme.RetryHint.Render("tekan r untuk mencoba lagi")
		result = lipgloss.JoinVertical(lipgloss.Left, result, hint)
	}
	return result
}

func (b *MessageBubble) renderGenericBubble() string {
	content := b.Turn.Content
	if content == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render(wordWrap(content, b.Width-4))
}

// ==========================================================================
// BUBBLE DETAILS
// ==========================================================================

// expandImageTags rewrites [IMAGE:n] references into readable badges,
// e.g. [IMAGE:0] becomes [Gambar 1: kms.png]. Out-of-range indexes are
// rendered without a name rather than dropped.
func (b *MessageBubble) expandImageTags(content string) string {
	if !strings.Contains(content, "[IMAGE:") {
		return content
	}
	return imageTagPattern.ReplaceAllStringFunc(content, func(tag string) string {
		idxText := imageTagPattern.FindStringSubmatch(tag)[1]
		idx, err := strconv.Atoi(idxText)
		if err != nil {
			return tag
		}
		label := "[Gambar " + strconv.Itoa(idx+1)
		if idx >= 0 && idx < len(b.RefImages) && b.RefImages[idx].Name != "" {
			label += ": " + b.RefImages[idx].Name
		}
		return label + "]"
	})
}

func (b *MessageBubble) renderAttachmentChips() string {
	chips := make([]string, 0, len(b.Turn.Images))
	for i, img := range b.Turn.Images {
		name := img.Name
		if name == "" {
			name = "gambar " + strconv.Itoa(i+1)
		}
		chips = append(chips, b.theme.ImageBadge.Render("[] "+name))
	}
	return strings.Join(chips, " ")
}

func (b *MessageBubble) renderSuggestedQuestions() string {
	lines := make([]string, 0, len(b.Turn.CategoryQuestions)+1)
	lines = append(lines, b.theme.SessionMeta.Render("Pertanyaan lanjutan:"))
	for _, q := range b.Turn.CategoryQuestions {
		lines = append(lines, b.theme.SuggestedChip.Render(q))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (b *MessageBubble) renderTimestamp() string {
	ts := b.Turn.Timestamp
	if ts.IsZero() {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(styles.TextMuted)
	if time.Since(ts) > 24*time.Hour {
		return style.Render(ts.Format("02 Jan 15:04"))
	}
	return style.Render(ts.Format("15:04"))
}
