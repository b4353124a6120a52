// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"errors"

	"github.com/jeranaias/posyandu-tui/internal/model"
)

var errAttachmentTooLarge = errors.New("gambar terlalu besar (maksimal 8 MB)")

// contextForSend returns the context used for provider calls started
// from the UI. Provider clients apply their own per-request timeouts,
// so the UI hands over a background context rather than tying the call
// to a single Update cycle.
func contextForSend() context.Context {
	return context.Background()
}

// referenceImagesFor returns the attachments an assistant turn's
// [IMAGE:n] tags refer to: the images on the nearest preceding user
// turn.
func referenceImagesFor(turns []*model.Turn, idx int) []model.ImageAttachment {
	for i := idx - 1; i >= 0; i-- {
		if turns[i].Role == model.RoleUser {
			if turns[i].HasImages() {
				return turns[i].Images
			}
			return nil
		}
	}
	return nil
}
