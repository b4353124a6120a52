// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/jeranaias/posyandu-tui/internal/model"
)

// DefaultVisionTimeout bounds a single image analysis request. Vision
// calls are slower than text completions.
const DefaultVisionTimeout = 90 * time.Second

// VisionClient analyzes image-bearing turns with a Gemini multimodal
// model.
type VisionClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewVisionClient creates a Gemini-backed vision client.
func NewVisionClient(ctx context.Context, apiKey, modelID string) (*VisionClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if modelID == "" {
		modelID = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &VisionClient{
		client:  client,
		model:   modelID,
		timeout: DefaultVisionTimeout,
		logger:  zap.NewNop(),
	}, nil
}

// WithTimeout sets the per-request timeout.
func (v *VisionClient) WithTimeout(timeout time.Duration) *VisionClient {
	if timeout > 0 {
		v.timeout = timeout
	}
	return v
}

// WithLogger sets the diagnostic logger.
func (v *VisionClient) WithLogger(logger *zap.Logger) *VisionClient {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// Model returns the configured model identifier.
func (v *VisionClient) Model() string {
	return v.model
}

// Analyze sends one combined prompt plus the attachment bytes and
// returns the model's text answer. Attachment order is preserved so
// [IMAGE:n] markers in the answer line up with the turn's images.
func (v *VisionClient) Analyze(ctx context.Context, promptText string, images []model.ImageAttachment) (string, error) {
	if len(images) == 0 {
		return "", errors.New("vision request requires at least one image")
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(promptText))

	for i, img := range images {
		data, mimeType, err := img.Data()
		if err != nil {
			return "", fmt.Errorf("failed to decode attachment %d (%s): %w", i, img.Name, err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, mimeType))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	reqCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	start := time.Now()
	result, err := v.client.Models.GenerateContent(reqCtx, v.model, contents, nil)
	if err != nil {
		v.logger.Warn("vision request failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return "", classifyGenAIError(err)
	}

	v.logger.Debug("vision response",
		zap.Duration("duration", time.Since(start)),
		zap.Int("images", len(images)))

	text := result.Text()
	if text == "" {
		return "", errors.New("empty response from vision model")
	}
	return text, nil
}

// classifyGenAIError maps Gemini SDK failures onto the shared error
// taxonomy. The SDK does not expose typed errors for these cases, so
// this falls back to message matching.
func classifyGenAIError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	case strings.Contains(msg, "quota"):
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	case strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	default:
		return err
	}
}
