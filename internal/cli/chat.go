// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the posyandu CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Command: chat
//
// Interactive Commands (during chat):
//   /bantuan, /help     Show available commands
//   /baru               Start a new conversation
//   /topik [id]         Show or switch consultation category
//   /gambar <file>      Attach an image to the next question
//   /riwayat            List saved conversations
//   /keluar, /quit      Exit chat
//   Ctrl+C / Ctrl+D     Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/posyandu-tui/internal/config"
	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/prompt"
	"github.com/jeranaias/posyandu-tui/internal/storage"
	"github.com/jeranaias/posyandu-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Sky).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// contextForCLI returns the context for provider calls made from CLI
// commands. Per-request timeouts live in the provider clients.
func contextForCLI() context.Context {
	return context.Background()
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.Dir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// SaveHistory persists command history to file.
func (c *ChatCLI) SaveHistory() {
	if f, err := os.Create(c.historyFile); err == nil {
		c.line.WriteHistory(f)
		f.Close()
	}
}

// Close releases the terminal and saves history.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat runs the interactive terminal chat loop.
func HandleChat(_ []string) {
	app, err := NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	repl := NewChatCLI()
	defer repl.Close()

	printChatWelcome(app)

	var pending []model.ImageAttachment
	for {
		input, err := repl.line.Prompt(promptStyle.Render("anda> "))
		if err != nil {
			// Ctrl+C or Ctrl+D ends the session.
			fmt.Println()
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		repl.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			var quit bool
			pending, quit = handleReplCommand(app, input, pending)
			if quit {
				return
			}
			continue
		}

		res, err := app.Pipeline.Send(contextForCLI(), input, pending)
		pending = nil
		if err != nil {
			fmt.Println(warningStyle.Render("Tidak terkirim: " + err.Error()))
			continue
		}

		fmt.Println()
		displayAnswer(res.Turn.Content)
		for _, q := range res.Turn.CategoryQuestions {
			fmt.Println(infoStyle.Render("  > " + q))
		}
		fmt.Println()
	}
}

func printChatWelcome(app *App) {
	fmt.Println(welcomeStyle.Render("Posyandu Menur - Asisten Kesehatan Ibu & Anak"))
	if sess := app.Store.Current(); sess != nil && len(sess.Messages) > 0 {
		fmt.Println(infoStyle.Render(WrapText(sess.Messages[0].Content, 0)))
	}
	fmt.Println(infoStyle.Render("Ketik pertanyaan, atau /bantuan untuk daftar perintah."))
	fmt.Println()
}

// handleReplCommand executes one slash command. It returns the still
// pending attachments and whether the loop should exit.
func handleReplCommand(app *App, input string, pending []model.ImageAttachment) ([]model.ImageAttachment, bool) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	switch cmd {
	case "bantuan", "help", "h", "?":
		printReplHelp()

	case "keluar", "quit", "q", "exit":
		return pending, true

	case "baru", "new", "n":
		greeting := ""
		if cat := app.Pipeline.Category(); cat != nil {
			greeting = cat.Greeting
		}
		if _, err := app.Store.CreateSession(greeting); err != nil {
			fmt.Println(warningStyle.Render("Gagal membuat obrolan: " + err.Error()))
			break
		}
		fmt.Println(commandStyle.Render("Obrolan baru dimulai."))

	case "topik", "category", "t":
		if len(args) == 0 {
			printCategories(app)
			break
		}
		cat := prompt.CategoryByID(strings.ToLower(args[0]))
		if cat == nil {
			fmt.Println(warningStyle.Render("Topik tidak dikenal: " + args[0]))
			break
		}
		app.Pipeline.SetCategory(cat)
		fmt.Println(commandStyle.Render("Topik aktif: " + cat.Icon + " " + cat.Name))

	case "gambar", "attach", "g":
		if len(args) == 0 {
			fmt.Println(warningStyle.Render("Pakai: /gambar <path-file>"))
			break
		}
		img, err := loadImageFile(args[0])
		if err != nil {
			fmt.Println(warningStyle.Render("Gagal memuat gambar: " + err.Error()))
			break
		}
		pending = append(pending, img)
		fmt.Println(commandStyle.Render("Gambar dilampirkan: " + img.Name))

	case "riwayat", "list", "l":
		fmt.Println(storage.FormatSessionList(app.Store.Sessions(), time.Now()))

	default:
		fmt.Println(warningStyle.Render("Perintah tidak dikenal: /" + cmd))
	}

	return pending, false
}

func printReplHelp() {
	fmt.Println(commandStyle.Render("Perintah yang tersedia:"))
	fmt.Println("  /baru              Mulai obrolan baru")
	fmt.Println("  /topik [id]        Lihat atau pilih topik konsultasi")
	fmt.Println("  /gambar <file>     Lampirkan gambar untuk pertanyaan berikutnya")
	fmt.Println("  /riwayat           Daftar obrolan tersimpan")
	fmt.Println("  /keluar            Keluar dari obrolan")
}

func printCategories(app *App) {
	active := app.Pipeline.Category()
	for _, cat := range prompt.Categories() {
		marker := "  "
		if active != nil && active.ID == cat.ID {
			marker = "* "
		}
		fmt.Printf("%s%s %s (%s)\n", marker, cat.Icon, cat.Name, cat.ID)
	}
}
