// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the posyandu-tui application.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// UNICODE: Rune-aware truncation preserves multi-byte characters.
// Indonesian input is mostly ASCII, but titles and answers routinely
// carry emoji, so byte-based slicing would corrupt them.

// TruncateRunes truncates a string to a maximum number of runes.
// If the string is truncated, "..." is appended within the limit.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateWidth truncates a string to a maximum display width,
// accounting for double-width characters (CJK, many emoji).
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// StringWidth returns the display width of a string in terminal cells.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads a string with spaces to the given display width.
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// NormalizeInput canonicalizes user input to NFC and trims surrounding
// whitespace. Composed and decomposed forms of the same text must hash
// and compare equal once persisted.
func NormalizeInput(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// FirstLine returns the first line of a string with trailing carriage
// returns removed.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "\r")
}

// CollapseNewlines replaces newlines with single spaces, for use in
// one-line previews and titles.
func CollapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}

// literalEscapes unescapes sequences some providers emit as literal
// two-character text instead of the characters themselves.
var literalEscapes = strings.NewReplacer(
	`\n`, "\n",
	`\t`, "\t",
	`\"`, `"`,
)

// UnescapeLiterals rewrites literal \n, \t and \" sequences in model
// output into real characters before rendering.
func UnescapeLiterals(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	return literalEscapes.Replace(s)
}
