// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider implements the two outbound language-model
// integrations: an OpenAI-compatible chat-completions client for text
// turns and a Gemini client for turns carrying images.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/posyandu-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has insufficient credits.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrQuotaExhausted indicates the provider quota is used up.
	ErrQuotaExhausted = errors.New("quota exhausted")
)

// APIError represents a structured error from a provider API.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("provider error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// ChatMessage represents a single message in a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: model.RoleUser.String(), Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: model.RoleAssistant.String(), Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: model.RoleSystem.String(), Content: content}
}

// =============================================================================
// PROVIDER INTERFACES
// =============================================================================

// TextCompleter produces an assistant answer from an ordered message
// list (system turn first, then history).
type TextCompleter interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// VisionAnalyzer produces an assistant answer from a combined prompt
// plus the turn's image attachments.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, promptText string, images []model.ImageAttachment) (string, error)
}
