// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the posyandu TUI.
package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// COLOR DEFINITION TESTS
// =============================================================================

func TestPrimaryColors(t *testing.T) {
	colors := []struct {
		name  string
		color lipgloss.AdaptiveColor
	}{
		{"Teal", Teal},
		{"TealDeep", TealDeep},
		{"Sky", Sky},
		{"SkyDeep", SkyDeep},
		{"Emerald", Emerald},
		{"Rose", Rose},
		{"Amber", Amber},
	}

	for _, c := range colors {
		if c.color.Light == "" || c.color.Dark == "" {
			t.Errorf("%s must define both light and dark variants", c.name)
		}
		if !strings.HasPrefix(c.color.Light, "#") || !strings.HasPrefix(c.color.Dark, "#") {
			t.Errorf("%s variants must be hex values", c.name)
		}
	}
}

func TestBubbleColorsDistinct(t *testing.T) {
	if UserBubbleBg == AssistantBubbleBg {
		t.Error("user and assistant bubbles must be visually distinct")
	}
	if ErrorBubbleBg == AssistantBubbleBg {
		t.Error("error responses must be visually distinct from healthy answers")
	}
}

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Verify styles are initialized by rendering a test string
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"ErrorBubble", theme.ErrorBubble},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"SessionList", theme.SessionList},
		{"WelcomeBox", theme.WelcomeBox},
		{"ConfirmBox", theme.ConfirmBox},
	}
	for _, s := range styles {
		if s.style.Render("test") == "" {
			t.Errorf("%s style should render non-empty output", s.name)
		}
	}
}

func TestGetLayoutMode(t *testing.T) {
	theme := NewTheme()

	cases := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}
	for _, tc := range cases {
		theme.SetSize(tc.width, 24)
		if got := theme.GetLayoutMode(); got != tc.want {
			t.Errorf("width %d: layout = %v, want %v", tc.width, got, tc.want)
		}
	}
}

// =============================================================================
// ACCESSIBILITY TESTS
// =============================================================================

func TestRenderHelpersIncludeShapeIndicators(t *testing.T) {
	cases := []struct {
		name      string
		rendered  string
		indicator string
	}{
		{"success", RenderSuccess("tersimpan"), StatusIndicators.Success},
		{"error", RenderError("gagal"), StatusIndicators.Error},
		{"warning", RenderWarning("hati-hati"), StatusIndicators.Warning},
		{"info", RenderInfo("catatan"), StatusIndicators.Info},
	}
	for _, tc := range cases {
		if !strings.Contains(tc.rendered, tc.indicator) {
			t.Errorf("%s render must include %q for colorblind users", tc.name, tc.indicator)
		}
	}
}
