// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the command handler registry pattern: each
// slash command is an individual, testable handler function.
package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/posyandu-tui/internal/prompt"
	"github.com/jeranaias/posyandu-tui/internal/storage"
	"github.com/jeranaias/posyandu-tui/internal/util"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler is a function that handles a specific slash command.
// It receives the model and command arguments, and returns an updated
// model and command.
type CommandHandler func(m *Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	// Help & Meta
	"help":    handleHelpCommand,
	"bantuan": handleHelpCommand,
	"?":       handleHelpCommand,
	"quit":    handleQuitCommand,
	"keluar":  handleQuitCommand,
	"q":       handleQuitCommand,

	// Session Management
	"new":     handleNewCommand,
	"baru":    handleNewCommand,
	"n":       handleNewCommand,
	"clear":   handleClearCommand,
	"bersih":  handleClearCommand,
	"list":    handleListCommand,
	"riwayat": handleListCommand,
	"l":       handleListCommand,
	"search":  handleSearchCommand,
	"cari":    handleSearchCommand,
	"export":  handleExportCommand,
	"ekspor":  handleExportCommand,
	"e":       handleExportCommand,

	// Consultation
	"topik":    handleCategoryCommand,
	"category": handleCategoryCommand,
	"t":        handleCategoryCommand,
	"gambar":   handleAttachCommand,
	"attach":   handleAttachCommand,
	"g":        handleAttachCommand,
	"retry":    handleRetryCommand,
	"ulang":    handleRetryCommand,
	"r":        handleRetryCommand,
}

// handleCommand processes slash commands using the registry pattern.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}

	cmdName := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	if handler, ok := commandHandlers[cmdName]; ok {
		return handler(&m, args)
	}
	return m, statusCmd("Perintah tidak dikenal: /" + cmdName + " (coba /bantuan)")
}

// =============================================================================
// HELP & META
// =============================================================================

func handleHelpCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	m.showHelp = !m.showHelp
	return *m, nil
}

func handleQuitCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return *m, tea.Quit
}

// =============================================================================
// SESSION MANAGEMENT
// =============================================================================

func handleNewCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.startNewSession()
}

func handleClearCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	if _, err := m.store.ClearAll(); err != nil {
		m.lastError = &ErrorMsg{Title: "Gagal menghapus riwayat", Message: err.Error()}
		return *m, nil
	}
	m.refreshViewport()
	return *m, statusCmd("Semua riwayat dihapus")
}

func handleListCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.openSessions()
}

func handleSearchCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	query := strings.Join(args, " ")
	matches := m.store.Search(query)
	m.picker.SetSessions(matches)
	m.mode = viewSessions
	m.input.Blur()
	if query != "" && len(matches) == 0 {
		return *m, statusCmd("Tidak ada obrolan yang cocok dengan \"" + query + "\"")
	}
	return *m, nil
}

func handleExportCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	sess := m.store.Current()
	if sess == nil {
		return *m, nil
	}

	path := "obrolan.md"
	if len(args) > 0 {
		path = args[0]
	}

	var data []byte
	if strings.HasSuffix(path, ".json") {
		var err error
		data, err = storage.ExportJSON(sess)
		if err != nil {
			m.lastError = &ErrorMsg{Title: "Gagal mengekspor", Message: err.Error()}
			return *m, nil
		}
	} else {
		data = []byte(storage.ExportMarkdown(sess))
	}

	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		m.lastError = &ErrorMsg{Title: "Gagal mengekspor", Message: err.Error()}
		return *m, nil
	}
	return *m, statusCmd("Obrolan tersimpan ke " + path)
}

// =============================================================================
// CONSULTATION
// =============================================================================

func handleCategoryCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.pipe.SetCategory(nil)
		return *m, statusCmd("Topik konsultasi dihapus")
	}

	cat := prompt.CategoryByID(strings.ToLower(args[0]))
	if cat == nil {
		ids := make([]string, 0, 4)
		for _, c := range prompt.Categories() {
			ids = append(ids, c.ID)
		}
		return *m, statusCmd("Topik tidak dikenal. Pilihan: " + strings.Join(ids, ", "))
	}

	m.pipe.SetCategory(cat)
	return *m, statusCmd("Topik aktif: " + cat.Icon + " " + cat.Name)
}

func handleAttachCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return *m, statusCmd("Pakai: /gambar <path-file>")
	}

	img, err := loadAttachment(args[0])
	if err != nil {
		m.lastError = &ErrorMsg{Title: "Gagal memuat gambar", Message: err.Error()}
		return *m, nil
	}

	m.pending = append(m.pending, img)
	return *m, statusCmd("Gambar dilampirkan: " + img.Name)
}

func handleRetryCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.retryLastAnswer()
}
