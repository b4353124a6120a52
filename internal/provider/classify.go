// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import "errors"

// =============================================================================
// USER-FACING ERROR MESSAGES
// =============================================================================

// Failures surface in the transcript as assistant turns, never as
// crashes or dialogs. Each taxonomy entry maps to a distinct literal
// so the user can tell a bad key from an empty balance.
const (
	// MsgGenericError covers network failures, malformed responses,
	// and anything else without a more specific classification.
	MsgGenericError = "Maaf, terjadi kesalahan. Silakan coba lagi dalam beberapa saat. 🙏"

	// MsgInvalidKey is shown for rejected credentials (401).
	MsgInvalidKey = "⚠️ API key tidak valid. Silakan periksa kembali API key Anda di file .env"

	// MsgNotConfigured is shown when a provider was never given a key.
	// Same family as MsgInvalidKey but a different signal: nothing was
	// sent, the configuration is simply incomplete.
	MsgNotConfigured = "⚠️ Gemini API key tidak valid atau belum diset. Silakan periksa file .env dan pastikan API key Gemini sudah diisi dengan benar."

	// MsgInsufficientCredits is shown for payment-required responses (402).
	MsgInsufficientCredits = "⚠️ API key kehabisan kredit. Silakan top up saldo atau gunakan API key yang berbeda."

	// MsgQuotaExhausted is shown for quota and rate-limit exhaustion.
	MsgQuotaExhausted = "⚠️ Quota API habis. Silakan tunggu beberapa saat atau gunakan API key lain."

	// msgProviderPrefix prefixes provider-supplied error text.
	msgProviderPrefix = "Maaf, terjadi kesalahan: "
)

// UserMessage classifies a provider failure into the Indonesian
// message appended to the transcript as an assistant turn.
func UserMessage(err error) string {
	if err == nil {
		return MsgGenericError
	}

	switch {
	case errors.Is(err, ErrNotConfigured):
		return MsgNotConfigured
	case errors.Is(err, ErrAuthFailed):
		return MsgInvalidKey
	case errors.Is(err, ErrInsufficientCredits):
		return MsgInsufficientCredits
	case errors.Is(err, ErrQuotaExhausted), errors.Is(err, ErrRateLimited):
		return MsgQuotaExhausted
	}

	// A structured provider message is surfaced verbatim behind a
	// generic apology.
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return msgProviderPrefix + apiErr.Message
	}

	return MsgGenericError
}
