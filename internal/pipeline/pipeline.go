// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline orchestrates one full user-turn-to-assistant-turn
// cycle: input validation, optimistic user-turn append, provider
// dispatch, and reconciling the result back into the session store.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/posyandu-tui/internal/model"
	"github.com/jeranaias/posyandu-tui/internal/prompt"
	"github.com/jeranaias/posyandu-tui/internal/provider"
	"github.com/jeranaias/posyandu-tui/internal/storage"
	"github.com/jeranaias/posyandu-tui/internal/util"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the pipeline's position in the send cycle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput rejects a send with no text and no attachments.
	ErrEmptyInput = errors.New("nothing to send")

	// ErrBusy rejects a send while another is in flight. Sends are
	// never queued.
	ErrBusy = errors.New("a request is already in flight")

	// ErrNoActiveSession rejects a send when no session is active.
	ErrNoActiveSession = errors.New("no active session")
)

// =============================================================================
// PIPELINE
// =============================================================================

// Result is the outcome of one send cycle. Provider failures are not
// errors at this boundary: they land in the transcript as an assistant
// turn and Failed is set.
type Result struct {
	Turn   *model.Turn
	Failed bool
}

// Pipeline runs send cycles against the session store. Exactly one
// provider call is in flight at a time.
type Pipeline struct {
	store  *storage.SessionStore
	text   provider.TextCompleter
	vision provider.VisionAnalyzer
	logger *zap.Logger

	mu       sync.Mutex
	state    State
	category *model.Category
}

// New creates a pipeline over the given store and providers.
func New(store *storage.SessionStore, text provider.TextCompleter, vision provider.VisionAnalyzer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		store:  store,
		text:   text,
		vision: vision,
		logger: logger,
		state:  StateIdle,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetCategory selects the active consultation category. A nil category
// reverts to the generic prompt.
func (p *Pipeline) SetCategory(c *model.Category) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.category = c
}

// Category returns the active consultation category, or nil.
func (p *Pipeline) Category() *model.Category {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.category
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one full cycle for the composed input. The user turn is
// appended durably before the provider call, so it survives even when
// the provider fails. Validation failures return an error with no
// state change; provider failures return a Result carrying the
// classified error message as an assistant turn.
func (p *Pipeline) Send(ctx context.Context, text string, images []model.ImageAttachment) (*Result, error) {
	text = util.NormalizeInput(text)
	if text == "" && len(images) == 0 {
		return nil, ErrEmptyInput
	}

	p.mu.Lock()
	if p.state == StateSubmitting {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	sess := p.store.Current()
	if sess == nil {
		p.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	p.state = StateSubmitting
	category := p.category
	p.mu.Unlock()

	// Optimistic append: the user turn is durable regardless of
	// provider outcome.
	userTurn := model.NewUserTurn(text, images)
	if err := p.store.AppendTurn(sess.ID, userTurn); err != nil {
		p.setState(StateIdle)
		return nil, err
	}

	return p.dispatch(ctx, sess.ID, category, text, images)
}

// dispatch issues the provider call for an already-appended user turn
// and reconciles the outcome into the store. Shared by Send and Retry.
func (p *Pipeline) dispatch(ctx context.Context, sessionID string, category *model.Category, text string, images []model.ImageAttachment) (*Result, error) {
	var answer string
	var callErr error

	if len(images) > 0 {
		answer, callErr = p.vision.Analyze(ctx, prompt.VisionPrompt(category, text), images)
	} else {
		answer, callErr = p.text.Chat(ctx, p.buildTextMessages(sessionID, category))
	}

	if callErr != nil {
		p.logger.Error("provider call failed",
			zap.String("session_id", sessionID),
			zap.Bool("vision", len(images) > 0),
			zap.Error(callErr))

		errTurn := model.NewAssistantTurn(provider.UserMessage(callErr))
		if err := p.store.AppendTurn(sessionID, errTurn); err != nil {
			p.setState(StateIdle)
			return nil, err
		}
		p.setState(StateFailed)
		p.setState(StateIdle)
		return &Result{Turn: errTurn, Failed: true}, nil
	}

	assistantTurn := model.NewAssistantTurn(answer)
	if category != nil {
		assistantTurn.CategoryQuestions = category.SuggestedQuestions
	}
	if err := p.store.AppendTurn(sessionID, assistantTurn); err != nil {
		p.setState(StateIdle)
		return nil, err
	}

	p.setState(StateSucceeded)
	p.setState(StateIdle)
	return &Result{Turn: assistantTurn}, nil
}

// buildTextMessages reconstructs the provider message list: one system
// turn followed by the session history in original order. Turns that
// carried images are excluded entirely, since the text provider has no
// memory of attachments from earlier turns.
func (p *Pipeline) buildTextMessages(sessionID string, category *model.Category) []provider.ChatMessage {
	messages := []provider.ChatMessage{
		provider.NewSystemMessage(prompt.Build(category, false)),
	}

	sess, err := p.store.Get(sessionID)
	if err != nil {
		return messages
	}
	for _, turn := range sess.Messages {
		if turn.Role != model.RoleUser && turn.Role != model.RoleAssistant {
			continue
		}
		if turn.HasImages() {
			continue
		}
		messages = append(messages, provider.ChatMessage{
			Role:    turn.Role.String(),
			Content: turn.Content,
		})
	}
	return messages
}

// setState moves the state machine.
func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// =============================================================================
// RETRY
// =============================================================================

// Retry re-runs the send cycle for the assistant turn at the given
// index: everything from that turn onward is dropped, then the nearest
// preceding user turn is replayed with its original content and
// attachments. A malformed history (no preceding user turn) makes the
// retry a silent no-op.
func (p *Pipeline) Retry(ctx context.Context, turnIndex int) (*Result, error) {
	p.mu.Lock()
	if p.state == StateSubmitting {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	sess := p.store.Current()
	if sess == nil {
		p.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	// Claim the in-flight slot under the same lock as the busy check,
	// exactly as Send does. Every early return below must release it.
	p.state = StateSubmitting
	category := p.category
	p.mu.Unlock()

	if turnIndex <= 0 || turnIndex >= sess.TurnCount() {
		p.setState(StateIdle)
		return nil, nil
	}

	// Locate the nearest preceding user turn.
	var replay *model.Turn
	for i := turnIndex - 1; i >= 0; i-- {
		if sess.Messages[i].Role == model.RoleUser {
			replay = sess.Messages[i]
			break
		}
	}
	if replay == nil {
		p.logger.Warn("retry skipped, no preceding user turn",
			zap.String("session_id", sess.ID),
			zap.Int("turn_index", turnIndex))
		p.setState(StateIdle)
		return nil, nil
	}

	truncated := make([]*model.Turn, turnIndex)
	copy(truncated, sess.Messages[:turnIndex])
	if err := p.store.UpdateMessages(sess.ID, truncated); err != nil {
		p.setState(StateIdle)
		return nil, err
	}

	return p.dispatch(ctx, sess.ID, category, replay.Content, replay.Images)
}

// =============================================================================
// RETRY AFFORDANCE
// =============================================================================

// minAnswerRunes is the length below which an assistant turn looks
// incomplete enough to suggest a retry.
const minAnswerRunes = 10

// LooksRetryable reports whether an assistant turn should carry a
// retry affordance in the UI. It is a suggestion heuristic only; retry
// itself is always allowed.
func LooksRetryable(turn *model.Turn) bool {
	if turn == nil || turn.Role != model.RoleAssistant {
		return false
	}
	content := strings.TrimSpace(turn.Content)
	if strings.Contains(content, "⚠️") || strings.HasPrefix(content, "Maaf, terjadi kesalahan") {
		return true
	}
	return len([]rune(content)) < minAnswerRunes
}
