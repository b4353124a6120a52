// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers for the posyandu CLI.
//
// Command: konfigurasi (config)
//
// Subcommands:
//   show    Print the effective configuration (default)
//   path    Print the configuration file location
//   init    Write a default config file if none exists
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/posyandu-tui/internal/config"
)

// HandleConfig dispatches the configuration subcommands.
func HandleConfig(rawArgs []string) {
	parser := NewArgParser(rawArgs)

	switch strings.ToLower(parser.Subcommand()) {
	case "", "show", "lihat":
		handleConfigShow()

	case "path", "lokasi":
		path, err := config.Path()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(path)

	case "init":
		handleConfigInit()

	default:
		fmt.Fprintf(os.Stderr, "Subperintah tidak dikenal: %s\n", parser.Subcommand())
		fmt.Fprintln(os.Stderr, "Pakai: posyandu konfigurasi [show|path|init]")
		os.Exit(1)
	}
}

func handleConfigShow() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	path, _ := config.Path()
	storePath, _ := cfg.StorePath()
	logPath, _ := cfg.LogPath()

	fmt.Println("Konfigurasi Posyandu Menur")
	fmt.Println()
	fmt.Printf("  Berkas konfigurasi : %s\n", path)
	fmt.Printf("  Basis data riwayat : %s\n", storePath)
	fmt.Printf("  Berkas log         : %s (level %s)\n", logPath, cfg.Log.Level)
	fmt.Println()
	fmt.Printf("  Model teks         : %s\n", cfg.Text.Model)
	fmt.Printf("  Endpoint teks      : %s\n", cfg.Text.BaseURL)
	fmt.Printf("  Kunci API teks     : %s\n", maskSecret(cfg.Text.APIKey))
	fmt.Printf("  Model visi         : %s\n", cfg.Vision.Model)
	fmt.Printf("  Kunci API visi     : %s\n", maskSecret(cfg.Vision.APIKey))
}

func handleConfigInit() {
	path, err := config.Path()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Konfigurasi sudah ada di %s\n", path)
		return
	}

	if err := config.Save(config.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "Gagal menulis konfigurasi: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Konfigurasi bawaan ditulis ke %s\n", path)
	fmt.Println("Isi kunci API Anda sebelum memulai obrolan.")
}

// maskSecret hides all but the last four characters of an API key.
func maskSecret(secret string) string {
	if secret == "" {
		return "(belum diatur)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
