// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Category describes a consultation topic the user can pick when
// starting a session. Categories steer the system prompt and provide
// topic-specific suggested questions.
type Category struct {
	// ID is the stable identifier persisted alongside sessions.
	ID string `json:"id"`

	// Name is the display label shown in menus.
	Name string `json:"name"`

	// Icon is a short emoji prefix for display.
	Icon string `json:"icon"`

	// Greeting replaces the default greeting for sessions opened under
	// this category.
	Greeting string `json:"greeting"`

	// SuggestedQuestions are ready-made prompts offered to the user.
	SuggestedQuestions []string `json:"suggested_questions"`

	// Focus is the instruction fragment appended to the system prompt.
	Focus string `json:"focus"`
}
