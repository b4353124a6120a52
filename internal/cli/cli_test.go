// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"strings"
	"testing"
)

// =============================================================================
// ARG PARSER
// =============================================================================

func TestArgParserLongFlags(t *testing.T) {
	parser := NewArgParser([]string{"export", "--out", "obrolan.md", "--json"})

	if got := parser.Subcommand(); got != "export" {
		t.Errorf("Subcommand() = %q, want %q", got, "export")
	}
	if got := parser.Flag("out"); got != "obrolan.md" {
		t.Errorf("Flag(out) = %q, want %q", got, "obrolan.md")
	}
	if !parser.BoolFlag("json") {
		t.Error("BoolFlag(json) = false, want true")
	}
}

func TestArgParserEqualsForm(t *testing.T) {
	parser := NewArgParser([]string{"--out=hasil.json", "--confirm=true", "--dry=false"})

	if got := parser.Flag("out"); got != "hasil.json" {
		t.Errorf("Flag(out) = %q, want %q", got, "hasil.json")
	}
	if !parser.BoolFlag("confirm") {
		t.Error("BoolFlag(confirm) = false, want true")
	}
	if parser.BoolFlag("dry") {
		t.Error("BoolFlag(dry) = true, want false")
	}
}

func TestArgParserShortFlags(t *testing.T) {
	parser := NewArgParser([]string{"-o", "keluar.md"})

	if got := parser.Flag("o"); got != "keluar.md" {
		t.Errorf("Flag(o) = %q, want %q", got, "keluar.md")
	}
	if !parser.HasFlag("o") {
		t.Error("HasFlag(o) = false, want true")
	}
	if parser.HasFlag("x") {
		t.Error("HasFlag(x) = true, want false")
	}
}

func TestArgParserPositionals(t *testing.T) {
	parser := NewArgParser([]string{"cari", "imunisasi", "campak"})

	if got := parser.Positional(1); got != "imunisasi" {
		t.Errorf("Positional(1) = %q, want %q", got, "imunisasi")
	}
	if got := parser.Positional(99); got != "" {
		t.Errorf("Positional(99) = %q, want empty", got)
	}

	rest := parser.PositionalFrom(1)
	if strings.Join(rest, " ") != "imunisasi campak" {
		t.Errorf("PositionalFrom(1) = %v", rest)
	}
	if got := parser.PositionalFrom(10); len(got) != 0 {
		t.Errorf("PositionalFrom(10) = %v, want empty", got)
	}
}

func TestArgParserFlagOrDefault(t *testing.T) {
	parser := NewArgParser([]string{"export"})

	if got := parser.FlagOrDefault("out", "obrolan.md"); got != "obrolan.md" {
		t.Errorf("FlagOrDefault = %q, want default", got)
	}
}

// =============================================================================
// COMMAND ROUTING
// =============================================================================

func TestParseRouting(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
		rest int
	}{
		{"no args opens TUI", nil, CmdTUI, 0},
		{"ask alias", []string{"tanya", "halo"}, CmdAsk, 1},
		{"chat alias", []string{"obrolan"}, CmdChat, 0},
		{"sessions alias", []string{"riwayat", "list"}, CmdSessions, 1},
		{"config alias", []string{"konfigurasi", "show"}, CmdConfig, 1},
		{"version flag", []string{"--version"}, CmdVersion, 0},
		{"help flag", []string{"-h"}, CmdHelp, 0},
		{"bare question falls through to ask", []string{"kapan imunisasi?"}, CmdAsk, 1},
	}

	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			os.Args = append([]string{"posyandu"}, tc.args...)
			cmd, rest := Parse()
			if cmd != tc.want {
				t.Errorf("Parse() command = %d, want %d", cmd, tc.want)
			}
			if len(rest) != tc.rest {
				t.Errorf("Parse() rest = %v, want %d args", rest, tc.rest)
			}
		})
	}
}

func TestParseBareQuestionKeepsFullArgs(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"posyandu", "kapan", "jadwal", "imunisasi?"}
	cmd, rest := Parse()
	if cmd != CmdAsk {
		t.Fatalf("Parse() command = %d, want CmdAsk", cmd)
	}
	if strings.Join(rest, " ") != "kapan jadwal imunisasi?" {
		t.Errorf("Parse() rest = %v, want the whole question", rest)
	}
}

// =============================================================================
// TEXT WRAPPING
// =============================================================================

func TestWrapTextRespectsWidth(t *testing.T) {
	text := "posyandu menur melayani imunisasi penimbangan dan konsultasi gizi setiap bulan"
	wrapped := WrapText(text, 30)

	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > 30 {
			t.Errorf("line exceeds width: %q (%d chars)", line, len(line))
		}
	}
	joined := strings.ReplaceAll(wrapped, "\n", " ")
	if joined != text {
		t.Errorf("wrapping changed content:\n got %q\nwant %q", joined, text)
	}
}

func TestWrapTextPreservesNewlines(t *testing.T) {
	text := "baris satu\nbaris dua"
	if got := WrapText(text, 40); got != text {
		t.Errorf("WrapText = %q, want unchanged %q", got, text)
	}
}

func TestWrapTextShortStaysOneLine(t *testing.T) {
	if got := WrapText("halo", 40); strings.Contains(got, "\n") {
		t.Errorf("WrapText wrapped a short line: %q", got)
	}
}

// =============================================================================
// SECRETS
// =============================================================================

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "(belum diatur)"},
		{"abc", "****"},
		{"sk-1234567890", "****7890"},
	}
	for _, tc := range tests {
		if got := maskSecret(tc.in); got != tc.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
