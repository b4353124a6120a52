// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the posyandu CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering for better CLI experience
//
// Command: ask [pertanyaan]
//
// Examples:
//   posyandu ask "Kapan jadwal imunisasi campak?"
//   posyandu ask --topik gizi "Menu MPASI umur 8 bulan?"
//   posyandu ask --gambar kms.png "Tolong baca grafik ini"
//   posyandu ask --json "Apa itu stunting?"
//
// Flags:
//   --topik ID      Consultation category (imunisasi, gizi, ibu_hamil, tumbuh_kembang)
//   --gambar FILE   Attach an image for analysis
//   --json          Output the answer as JSON
package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/prompt"
	"github.com/jeranaias/posyandu-tui/internal/util"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the glamour renderer for answer output.
// USABILITY: Answers are Markdown; render them when stdout is a TTY.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or the renderer is
// unavailable.
func renderMarkdown(content string) string {
	content = util.UnescapeLiterals(content)
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayAnswer prints an answer with markdown rendering when
// appropriate. Piped output stays plain.
func displayAnswer(answer string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(answer))
	} else {
		fmt.Println(answer)
	}
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// askOutput is the JSON shape emitted with --json.
type askOutput struct {
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Failed    bool     `json:"failed"`
	SessionID string   `json:"session_id"`
	Questions []string `json:"suggested_questions,omitempty"`
}

// HandleAsk runs a single question through the pipeline and prints the
// answer. The exchange lands in the durable history like any other.
func HandleAsk(rawArgs []string) {
	args := NewArgParser(rawArgs)
	question := strings.Join(args.PositionalFrom(0), " ")

	var images []model.ImageAttachment
	if path := args.Flag("gambar"); path != "" {
		img, err := loadImageFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Gagal memuat gambar: %v\n", err)
			os.Exit(1)
		}
		images = append(images, img)
	}

	if question == "" && len(images) == 0 {
		fmt.Fprintln(os.Stderr, "Pakai: posyandu ask \"pertanyaan Anda\"")
		os.Exit(1)
	}

	app, err := NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if id := args.Flag("topik"); id != "" {
		cat := prompt.CategoryByID(strings.ToLower(id))
		if cat == nil {
			fmt.Fprintf(os.Stderr, "Topik tidak dikenal: %s\n", id)
			os.Exit(1)
		}
		app.Pipeline.SetCategory(cat)
	}

	res, err := app.Pipeline.Send(contextForCLI(), question, images)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if args.BoolFlag("json") {
		out := askOutput{
			Question:  question,
			Answer:    res.Turn.Content,
			Failed:    res.Failed,
			Questions: res.Turn.CategoryQuestions,
		}
		if sess := app.Store.Current(); sess != nil {
			out.SessionID = sess.ID
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		displayAnswer(res.Turn.Content)
	}

	if res.Failed {
		os.Exit(1)
	}
}

// loadImageFile reads an image from disk into an attachment, deriving
// the MIME type from the extension.
func loadImageFile(path string) (model.ImageAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ImageAttachment{}, err
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = model.DefaultMIMEType
	}
	return model.NewImageAttachment(filepath.Base(path), data, mimeType), nil
}
