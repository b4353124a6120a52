// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// Posyandu Menur assistant.
//
// Configuration sources (in order of precedence):
//   - Environment variables (POSYANDU_*)
//   - ~/.posyandu-ai/config.toml
//   - An optional .env file in the working directory
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete assistant configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Text provider (OpenAI-compatible chat completions)
	Text TextConfig `toml:"text" json:"text"`

	// Vision provider (Gemini)
	Vision VisionConfig `toml:"vision" json:"vision"`

	// Local storage
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Logging
	Log LogConfig `toml:"log" json:"log"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// TextConfig contains the text completion provider configuration.
type TextConfig struct {
	// BaseURL is the API root, e.g. https://openrouter.ai/api/v1
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the chat completion model identifier
	Model string `toml:"model" json:"model"`
	// APIKey authenticates requests. Prefer POSYANDU_TEXT_API_KEY over
	// storing the key in the config file.
	APIKey string `toml:"api_key" json:"api_key"`
	// TimeoutSecs bounds a single completion request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the retry budget for transient failures
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RateLimitRPS caps outgoing requests per second (0 = no cap)
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
}

// VisionConfig contains the image analysis provider configuration.
type VisionConfig struct {
	// APIKey authenticates against the Gemini API
	APIKey string `toml:"api_key" json:"api_key"`
	// Model is the multimodal model identifier
	Model string `toml:"model" json:"model"`
	// TimeoutSecs bounds a single analysis request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// StorageConfig contains local persistence configuration.
type StorageConfig struct {
	// Path is the chat history database file (empty = default under
	// ~/.posyandu-ai)
	Path string `toml:"path" json:"path"`
	// WatchEnabled reloads the store when another process writes it
	WatchEnabled bool `toml:"watch_enabled" json:"watch_enabled"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of: debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Path is the log file (empty = default under ~/.posyandu-ai).
	// Logs go to a file because stdout belongs to the TUI.
	Path string `toml:"path" json:"path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// WordWrap is the markdown render width
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
	// ShowTimestamps displays turn timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Text: TextConfig{
			BaseURL:      "https://openrouter.ai/api/v1",
			Model:        "deepseek/deepseek-chat",
			TimeoutSecs:  60,
			MaxRetries:   3,
			RateLimitRPS: 2,
		},

		Vision: VisionConfig{
			Model:       "gemini-2.0-flash",
			TimeoutSecs: 90,
		},

		Storage: StorageConfig{
			WatchEnabled: true,
		},

		Log: LogConfig{
			Level: "info",
		},

		UI: UIConfig{
			Theme:          "auto",
			WordWrap:       80,
			ShowTimestamps: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the application configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".posyandu-ai"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// StorePath resolves the chat history database path.
func (c *Config) StorePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LogPath resolves the log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "posyandu.log"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to protect API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from .env, the config file, and the
// environment, in that order of increasing precedence.
func Load() (*Config, error) {
	// A missing .env is not an error.
	_ = godotenv.Load()

	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := loadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Used by the --config flag.
func LoadFromPath(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := loadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func loadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# posyandu-ai configuration file")
	fmt.Fprintln(file, "# Generated file - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Text.BaseURL != "" {
		if u, err := url.Parse(c.Text.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "text.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Text.BaseURL),
			})
		}
	}

	if c.Text.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "text.timeout_secs",
			Message: "must be non-negative",
		})
	}
	if c.Text.MaxRetries < 0 {
		errs = append(errs, ValidationError{
			Field:   "text.max_retries",
			Message: "must be non-negative",
		})
	}
	if c.Text.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "text.rate_limit_rps",
			Message: "must be non-negative",
		})
	}
	if c.Vision.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "vision.timeout_secs",
			Message: "must be non-negative",
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: "must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Text.BaseURL == "" {
		c.Text.BaseURL = defaults.Text.BaseURL
	}
	if c.Text.Model == "" {
		c.Text.Model = defaults.Text.Model
	}
	if c.Text.TimeoutSecs == 0 {
		c.Text.TimeoutSecs = defaults.Text.TimeoutSecs
	}
	if c.Text.MaxRetries == 0 {
		c.Text.MaxRetries = defaults.Text.MaxRetries
	}
	if c.Vision.Model == "" {
		c.Vision.Model = defaults.Vision.Model
	}
	if c.Vision.TimeoutSecs == 0 {
		c.Vision.TimeoutSecs = defaults.Vision.TimeoutSecs
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = defaults.UI.WordWrap
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - POSYANDU_TEXT_API_KEY: overrides text.api_key
//   - POSYANDU_TEXT_BASE_URL: overrides text.base_url
//   - POSYANDU_TEXT_MODEL: overrides text.model
//   - POSYANDU_VISION_API_KEY: overrides vision.api_key
//   - POSYANDU_VISION_MODEL: overrides vision.model
//   - POSYANDU_DB_PATH: overrides storage.path
//   - POSYANDU_LOG_LEVEL: overrides log.level
//   - POSYANDU_THEME: overrides ui.theme
//   - POSYANDU_TIMEOUT_SECS: overrides text.timeout_secs
//   - GEMINI_API_KEY: fallback for vision.api_key
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("POSYANDU_TEXT_API_KEY"); key != "" {
		c.Text.APIKey = key
	}
	if base := os.Getenv("POSYANDU_TEXT_BASE_URL"); base != "" {
		c.Text.BaseURL = base
	}
	if model := os.Getenv("POSYANDU_TEXT_MODEL"); model != "" {
		c.Text.Model = model
	}

	if key := os.Getenv("POSYANDU_VISION_API_KEY"); key != "" {
		c.Vision.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.Vision.APIKey == "" {
		c.Vision.APIKey = key
	}
	if model := os.Getenv("POSYANDU_VISION_MODEL"); model != "" {
		c.Vision.Model = model
	}

	if path := os.Getenv("POSYANDU_DB_PATH"); path != "" {
		c.Storage.Path = path
	}
	if level := os.Getenv("POSYANDU_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if theme := os.Getenv("POSYANDU_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if secs := os.Getenv("POSYANDU_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.Text.TimeoutSecs = n
		}
	}
}
