// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Text.TimeoutSecs != 60 {
		t.Errorf("text timeout = %d, want 60", cfg.Text.TimeoutSecs)
	}
	if cfg.UI.WordWrap != 80 {
		t.Errorf("word wrap = %d, want 80", cfg.UI.WordWrap)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
version = "1.0.0"

[text]
base_url = "https://openrouter.ai/api/v1"
model = "deepseek/deepseek-chat"
timeout_secs = 30

[vision]
model = "gemini-2.0-flash"

[ui]
theme = "dark"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Text.TimeoutSecs != 30 {
		t.Errorf("timeout = %d, want 30", cfg.Text.TimeoutSecs)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q, want dark", cfg.UI.Theme)
	}
	// Missing fields gain defaults.
	if cfg.Text.MaxRetries != 3 {
		t.Errorf("max_retries = %d, want default 3", cfg.Text.MaxRetries)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want default info", cfg.Log.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "neon"
	cfg.Text.BaseURL = "not a url"
	cfg.Log.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	errs, ok := err.(ValidateErrors)
	if !ok {
		t.Fatalf("expected ValidateErrors, got %T", err)
	}
	if len(errs) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(errs), errs)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POSYANDU_TEXT_API_KEY", "sk-test-123")
	t.Setenv("POSYANDU_TEXT_MODEL", "meta-llama/llama-3-8b")
	t.Setenv("POSYANDU_LOG_LEVEL", "debug")
	t.Setenv("POSYANDU_TIMEOUT_SECS", "15")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Text.APIKey != "sk-test-123" {
		t.Errorf("api key = %q", cfg.Text.APIKey)
	}
	if cfg.Text.Model != "meta-llama/llama-3-8b" {
		t.Errorf("model = %q", cfg.Text.Model)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Text.TimeoutSecs != 15 {
		t.Errorf("timeout = %d", cfg.Text.TimeoutSecs)
	}
}

func TestGeminiKeyFallback(t *testing.T) {
	t.Setenv("POSYANDU_VISION_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gm-key")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Vision.APIKey != "gm-key" {
		t.Errorf("vision key = %q, want GEMINI_API_KEY fallback", cfg.Vision.APIKey)
	}

	// The dedicated variable wins over the fallback.
	t.Setenv("POSYANDU_VISION_API_KEY", "py-key")
	cfg = Default()
	cfg.ApplyEnvOverrides()
	if cfg.Vision.APIKey != "py-key" {
		t.Errorf("vision key = %q, want POSYANDU_VISION_API_KEY", cfg.Vision.APIKey)
	}
}

func TestStorePathDefault(t *testing.T) {
	cfg := Default()
	path, err := cfg.StorePath()
	if err != nil {
		t.Fatalf("StorePath failed: %v", err)
	}
	if filepath.Base(path) != "history.db" {
		t.Errorf("store path = %q", path)
	}

	cfg.Storage.Path = "/tmp/custom.db"
	path, err = cfg.StorePath()
	if err != nil {
		t.Fatalf("StorePath failed: %v", err)
	}
	if path != "/tmp/custom.db" {
		t.Errorf("store path = %q, want override", path)
	}
}
