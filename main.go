// posyandu TUI - A terminal chat assistant for Posyandu Menur.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/posyandu-tui/internal/cli"
	"github.com/jeranaias/posyandu-tui/internal/ui/chat"
	"github.com/jeranaias/posyandu-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async store notifications
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdSessions:
		cli.HandleSessions(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintHelp()
	default:
		cli.PrintHelp()
		os.Exit(1)
	}
}

func runTUI() {
	app, err := cli.NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// External store writes (another terminal, another instance) are
	// surfaced to the running model as StoreChangedMsg.
	if err := app.StartWatcher(notifyStoreChanged); err != nil {
		app.Logger.Warn("store watcher unavailable, live reload disabled")
	}

	theme := styles.NewTheme()
	m := chat.New(theme, app.Store, app.Pipeline, app.Logger)

	p := tea.NewProgram(m, tea.WithAltScreen())
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func notifyStoreChanged() {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(chat.StoreChangedMsg{})
	}
}
