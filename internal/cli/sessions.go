// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Session management command handlers for the posyandu CLI.
//
// Command: riwayat (sessions)
//
// Subcommands:
//   list                List saved conversations (default)
//   cari <kata>         Search conversations by title or content
//   ekspor [id]         Export a conversation to Markdown or JSON
//   hapus <id>          Delete a conversation
//   bersihkan --confirm Delete all conversations
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/posyandu-tui/internal/storage"
	"github.com/jeranaias/posyandu-tui/internal/util"
)

// HandleSessions dispatches the session management subcommands.
func HandleSessions(rawArgs []string) {
	parser := NewArgParser(rawArgs)

	app, err := NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	switch strings.ToLower(parser.Subcommand()) {
	case "", "list", "daftar":
		fmt.Println(storage.FormatSessionList(app.Store.Sessions(), time.Now()))

	case "cari", "search":
		handleSessionsSearch(app, parser)

	case "ekspor", "export":
		handleSessionsExport(app, parser)

	case "hapus", "delete":
		handleSessionsDelete(app, parser)

	case "bersihkan", "clear":
		handleSessionsClear(app, parser)

	default:
		fmt.Fprintf(os.Stderr, "Subperintah tidak dikenal: %s\n", parser.Subcommand())
		fmt.Fprintln(os.Stderr, "Pakai: posyandu riwayat [list|cari|ekspor|hapus|bersihkan]")
		os.Exit(1)
	}
}

func handleSessionsSearch(app *App, parser *ArgParser) {
	query := strings.Join(parser.PositionalFrom(1), " ")
	if query == "" {
		fmt.Fprintln(os.Stderr, "Pakai: posyandu riwayat cari <kata kunci>")
		os.Exit(1)
	}

	matches := app.Store.Search(query)
	if len(matches) == 0 {
		fmt.Printf("Tidak ada obrolan yang cocok dengan %q.\n", query)
		return
	}
	fmt.Println(storage.FormatSessionList(matches, time.Now()))
}

func handleSessionsExport(app *App, parser *ArgParser) {
	sess := app.Store.Current()
	if id := parser.Positional(1); id != "" {
		// The list command prints shortened ids; accept them back.
		found, err := app.Store.FindByPrefix(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Obrolan tidak ditemukan: %v\n", err)
			os.Exit(1)
		}
		sess = found
	}
	if sess == nil {
		fmt.Fprintln(os.Stderr, "Tidak ada obrolan untuk diekspor.")
		os.Exit(1)
	}

	outPath := parser.FlagOrDefault("out", "obrolan.md")

	var data []byte
	if strings.HasSuffix(strings.ToLower(outPath), ".json") {
		encoded, err := storage.ExportJSON(sess)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Gagal mengekspor: %v\n", err)
			os.Exit(1)
		}
		data = encoded
	} else {
		data = []byte(storage.ExportMarkdown(sess))
	}
	if err := util.AtomicWriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Gagal menulis %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Printf("Obrolan %q diekspor ke %s\n", sess.Title, outPath)
}

func handleSessionsDelete(app *App, parser *ArgParser) {
	id := parser.Positional(1)
	if id == "" {
		fmt.Fprintln(os.Stderr, "Pakai: posyandu riwayat hapus <id>")
		os.Exit(1)
	}

	sess, err := app.Store.FindByPrefix(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Obrolan tidak ditemukan: %v\n", err)
		os.Exit(1)
	}
	if err := app.Store.DeleteSession(sess.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Gagal menghapus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Obrolan %q dihapus.\n", sess.Title)
}

func handleSessionsClear(app *App, parser *ArgParser) {
	if !parser.BoolFlag("confirm") {
		fmt.Fprintln(os.Stderr, "Ini menghapus SEMUA riwayat obrolan.")
		fmt.Fprintln(os.Stderr, "Jalankan ulang dengan --confirm untuk melanjutkan.")
		os.Exit(1)
	}
	if _, err := app.Store.ClearAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Gagal membersihkan riwayat: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Semua riwayat dihapus. Obrolan baru telah disiapkan.")
}
