// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line entry points for the posyandu assistant.
//
// The binary defaults to the TUI when started without arguments;
// everything else is routed through Parse into a command constant the
// main package switches on.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND ROUTING
// =============================================================================

// Command identifies a top-level CLI command.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdConfig
	CmdVersion
	CmdHelp
)

// Parse parses command-line arguments and returns the command plus its
// remaining arguments.
func Parse() (Command, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return CmdTUI, nil
	}

	cmd := strings.ToLower(args[0])
	rest := args[1:]

	switch cmd {
	case "tui":
		return CmdTUI, rest
	case "ask", "tanya":
		return CmdAsk, rest
	case "chat", "obrolan":
		return CmdChat, rest
	case "session", "sessions", "riwayat":
		return CmdSessions, rest
	case "config", "konfigurasi":
		return CmdConfig, rest
	case "version", "--version", "-v":
		return CmdVersion, rest
	case "help", "--help", "-h", "bantuan":
		return CmdHelp, rest
	default:
		// Unrecognized first argument is treated as an ask query, so
		// `posyandu "kapan imunisasi?"` just works.
		return CmdAsk, args
	}
}

// =============================================================================
// HELP & VERSION
// =============================================================================

// PrintVersion prints build information.
func PrintVersion() {
	fmt.Printf("posyandu %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// PrintHelp prints top-level usage.
func PrintHelp() {
	fmt.Print(`posyandu - Asisten AI Posyandu Menur

Pemakaian:
  posyandu                      Buka antarmuka TUI
  posyandu ask [teks]           Ajukan satu pertanyaan
  posyandu chat                 Obrolan interaktif di terminal
  posyandu sessions <perintah>  Kelola riwayat obrolan
  posyandu config <perintah>    Lihat atau ubah konfigurasi
  posyandu version              Info versi

Perintah ask:
  --topik ID      Pilih topik konsultasi (imunisasi, gizi, ibu_hamil, tumbuh_kembang)
  --gambar FILE   Lampirkan gambar (dianalisis asisten)
  --json          Keluarkan jawaban sebagai JSON

Perintah sessions:
  list                     Daftar obrolan tersimpan
  search <kata>            Cari di judul dan isi obrolan
  export [id] [--out F]    Ekspor obrolan ke Markdown/JSON
  delete <id>              Hapus satu obrolan
  clear --confirm          Hapus semua riwayat

Contoh:
  posyandu ask "Kapan jadwal imunisasi campak?"
  posyandu ask --topik gizi "Menu MPASI umur 8 bulan?"
  posyandu ask --gambar kms.png "Tolong baca grafik ini"
  posyandu sessions export --out obrolan.md
`)
}
