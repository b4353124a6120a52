// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/pipeline"
	"github.com/jeranaias/posyandu-tui/internal/storage"
	"github.com/jeranaias/posyandu-tui/internal/ui/components"
	"github.com/jeranaias/posyandu-tui/internal/ui/styles"
)

// =============================================================================
// VIEW MODES
// =============================================================================

// viewMode selects which screen the chat model is showing.
type viewMode int

const (
	viewWelcome  viewMode = iota // landing screen with categories
	viewChat                     // active conversation
	viewSessions                 // session history picker
)

// maxAttachmentBytes caps how large an attached image may be. Vision
// providers reject oversized payloads anyway; failing early keeps the
// error local and readable.
const maxAttachmentBytes = 8 << 20

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	mode viewMode
	busy bool

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Domain
	store *storage.SessionStore
	pipe  *pipeline.Pipeline

	// UI Components
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	welcome   *components.WelcomeCard
	picker    *components.SessionPicker
	statusBar *components.StatusBar

	// Markdown rendering
	renderer *glamour.TermRenderer

	// Key bindings
	keyMap KeyMap

	// Pending attachments for the next send
	pending []model.ImageAttachment

	// Transient state
	statusMsg string
	lastError *ErrorMsg
	showHelp  bool

	logger *zap.Logger
}

// New creates a new chat model wired to the store and pipeline.
func New(theme *styles.Theme, store *storage.SessionStore, pipe *pipeline.Pipeline, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ketik pertanyaan Anda..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	// Word wrap is re-tuned on resize; 80 is the pre-resize default.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		logger.Warn("markdown renderer unavailable, falling back to plain text", zap.Error(err))
		renderer = nil
	}

	m := Model{
		mode:      viewWelcome,
		theme:     theme,
		store:     store,
		pipe:      pipe,
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		welcome:   components.NewWelcomeCard(theme),
		picker:    components.NewSessionPicker(theme),
		statusBar: components.NewStatusBar(theme),
		renderer:  renderer,
		keyMap:    DefaultKeyMap(),
		logger:    logger,
	}

	// Returning visitors land in the conversation, not the welcome
	// screen, when the active session already has real history.
	if sess := store.Current(); sess != nil && sess.TurnCount() > 1 {
		m.mode = viewChat
	}
	m.refreshViewport()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// loadAttachment reads an image file from disk into a data-URI backed
// attachment. The MIME type comes from the file extension, falling
// back to JPEG.
func loadAttachment(path string) (model.ImageAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ImageAttachment{}, err
	}
	if len(data) > maxAttachmentBytes {
		return model.ImageAttachment{}, errAttachmentTooLarge
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = model.DefaultMIMEType
	}
	return model.NewImageAttachment(filepath.Base(path), data, mimeType), nil
}

// =============================================================================
// PIPELINE COMMANDS
// =============================================================================

// sendCmd runs one send cycle off the UI goroutine.
func (m *Model) sendCmd(text string, images []model.ImageAttachment) tea.Cmd {
	pipe := m.pipe
	return func() tea.Msg {
		res, err := pipe.Send(contextForSend(), text, images)
		return ResponseMsg{Result: res, Err: err}
	}
}

// retryCmd re-runs the send cycle for the turn at the given index.
func (m *Model) retryCmd(turnIndex int) tea.Cmd {
	pipe := m.pipe
	return func() tea.Msg {
		res, err := pipe.Retry(contextForSend(), turnIndex)
		return ResponseMsg{Result: res, Err: err}
	}
}

// statusCmd shows a transient status message that clears itself.
func statusCmd(text string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return StatusMsg{Text: text} },
		tea.Tick(3*time.Second, func(time.Time) tea.Msg { return ClearStatusMsg{} }),
	)
}
