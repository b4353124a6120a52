// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and turns.
package model

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// RoleSystem exists only on the wire to the text provider; system
	// turns are never persisted in a session.
	RoleSystem Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Anda"
	case RoleAssistant:
		return "Asisten"
	case RoleSystem:
		return "Sistem"
	default:
		return string(r)
	}
}

// =============================================================================
// IMAGE ATTACHMENT
// =============================================================================

// DefaultMIMEType is assumed when an attachment's MIME type cannot be
// determined from its data URI.
const DefaultMIMEType = "image/jpeg"

// ErrNotDataURI is returned when an attachment preview is not a
// base64 data URI.
var ErrNotDataURI = errors.New("attachment preview is not a base64 data URI")

// ImageAttachment is an image supplied by the user alongside a turn.
// It is owned by the turn that references it and is never mutated
// after creation.
type ImageAttachment struct {
	// Preview is the image encoded as a data URI
	// (data:image/png;base64,...).
	Preview string `json:"preview"`

	// Name is the original filename.
	Name string `json:"name"`
}

// NewImageAttachment builds an attachment from raw image bytes,
// encoding them as a data URI. An empty mimeType defaults to
// DefaultMIMEType.
func NewImageAttachment(name string, data []byte, mimeType string) ImageAttachment {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return ImageAttachment{
		Preview: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Name:    name,
	}
}

// Data decodes the attachment back into raw bytes plus its MIME type.
// When the MIME type cannot be extracted, DefaultMIMEType is returned.
func (a ImageAttachment) Data() ([]byte, string, error) {
	rest, ok := strings.CutPrefix(a.Preview, "data:")
	if !ok {
		return nil, "", ErrNotDataURI
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrNotDataURI
	}

	mimeType := DefaultMIMEType
	if mt, _, found := strings.Cut(meta, ";"); found && mt != "" {
		mimeType = mt
	} else if !found && meta != "" && !strings.EqualFold(meta, "base64") {
		mimeType = meta
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn represents a single message exchanged in a session.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Images is present only on turns that included an upload. A
	// text-only turn carries nil here, never an empty slice.
	Images []ImageAttachment `json:"images,omitempty"`

	// CategoryQuestions carries suggested follow-up questions attached
	// to assistant turns when a category is active.
	CategoryQuestions []string `json:"category_questions,omitempty"`
}

// NewTurn creates a new turn with a generated ID.
func NewTurn(role Role, content string) *Turn {
	return &Turn{
		ID:        generateTurnID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserTurn creates a user turn, attaching images only when the
// slice is non-empty.
func NewUserTurn(content string, images []ImageAttachment) *Turn {
	t := NewTurn(RoleUser, content)
	if len(images) > 0 {
		t.Images = images
	}
	return t
}

// NewAssistantTurn creates an assistant turn.
func NewAssistantTurn(content string) *Turn {
	return NewTurn(RoleAssistant, content)
}

// HasImages reports whether the turn carries attachments.
func (t *Turn) HasImages() bool {
	return len(t.Images) > 0
}

// Preview returns a one-line, truncated preview of the turn content.
// Uses rune-based truncation to handle Unicode correctly.
func (t *Turn) Preview(maxLen int) string {
	content := strings.ReplaceAll(t.Content, "\n", " ")
	content = strings.ReplaceAll(content, "\r", "")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the turn has neither content nor images.
func (t *Turn) IsEmpty() bool {
	return len(t.Content) == 0 && len(t.Images) == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateTurnID creates a unique turn ID.
func generateTurnID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
