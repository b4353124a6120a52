// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat
// interface. Messages are organized into the following categories:
//   - Pipeline: responses coming back from the assistant
//   - Store: external history changes picked up by the watcher
//   - UI State: transient status and error display
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"github.com/jeranaias/posyandu-tui/internal/pipeline"
)

// =============================================================================
// PIPELINE MESSAGES
// =============================================================================

// ResponseMsg delivers the outcome of a send or retry cycle. Err is
// only set for pre-flight failures (busy, no session, store errors);
// provider failures arrive as a Result with Failed set, already
// recorded in the transcript.
type ResponseMsg struct {
	Result *pipeline.Result
	Err    error
}

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StoreChangedMsg signals that another process rewrote the history
// store and the in-memory state has been reloaded.
type StoreChangedMsg struct{}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// StatusMsg sets a transient status line message.
type StatusMsg struct {
	Text string
}

// ClearStatusMsg clears the transient status line message.
type ClearStatusMsg struct{}

// ErrorMsg displays a blocking error box.
type ErrorMsg struct {
	Title   string
	Message string
}

// ErrorDismissMsg dismisses the error box.
type ErrorDismissMsg struct{}
