// Package config handles configuration for forecastchat.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/diogo/forecastchat/internal/errors"
	"github.com/diogo/forecastchat/internal/models"
)

// EnvEndpoint overrides the configured endpoint
const EnvEndpoint = "FORECASTCHAT_ENDPOINT"

// MarkdownConfig configures markdown rendering of assistant messages
type MarkdownConfig struct {
	Style            string `json:"style"`             // glamour style name or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the forecast backend's WebSocket URL
	Endpoint string `json:"endpoint" validate:"required,wsurl"`
	// HistoryWindow is how many trailing historical points the chart shows
	HistoryWindow int `json:"history_window" validate:"min=1,max=3650"`
	// MaxTicks caps the visible x-axis labels
	MaxTicks int `json:"max_ticks" validate:"min=2,max=50"`
	// Greeting shows a hint message once the connection opens
	Greeting bool `json:"greeting"`
	// CopyToClipboard copies one-shot replies to the clipboard
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty" validate:"omitempty,oneof=tokyonight catppuccin nord light"`
	LogFile         string         `json:"log_file,omitempty"`
	LogLevel        string         `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Verbose         bool           `json:"verbose"`
	Markdown        MarkdownConfig `json:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        models.DefaultEndpoint,
		HistoryWindow:   models.HistoryWindow,
		MaxTicks:        models.MaxTicks,
		Greeting:        true,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		LogLevel:        "info",
		Verbose:         false,
		Markdown:        DefaultMarkdownConfig(),
	}
}

// AvailableThemes returns the TUI theme names accepted by the config
func AvailableThemes() []string {
	return []string{"catppuccin", "light", "nord", "tokyonight"}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".forecastchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path from config, defaulting to the config dir
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "forecastchat.log"), nil
}

// LoadConfig loads the configuration from disk, applying environment
// overrides. A missing file yields the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	ApplyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment
func ApplyEnv(cfg *Config) {
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		cfg.Endpoint = endpoint
	}
}

// SaveConfig validates and saves the configuration to disk
func SaveConfig(cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("wsurl", func(fl validator.FieldLevel) bool {
		return isWebSocketURL(fl.Field().String())
	})
	return v
}

func isWebSocketURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "ws" || u.Scheme == "wss") && u.Host != ""
}

// Validate checks cfg and reports the first invalid field as a ConfigError
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apierrors.NewConfigError(jsonFieldName(fe.StructField()), describe(fe))
	}
	return fmt.Errorf("failed to validate config: %w", err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "wsurl":
		return "must be a ws:// or wss:// URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

var jsonNames = map[string]string{
	"Endpoint":        "endpoint",
	"HistoryWindow":   "history_window",
	"MaxTicks":        "max_ticks",
	"Greeting":        "greeting",
	"CopyToClipboard": "copy_to_clipboard",
	"TUITheme":        "tui_theme",
	"LogFile":         "log_file",
	"LogLevel":        "log_level",
	"Verbose":         "verbose",
}

func jsonFieldName(field string) string {
	if name, ok := jsonNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}

// Keys returns the keys accepted by Set
func Keys() []string {
	return []string{
		"endpoint", "history_window", "max_ticks", "greeting", "copy_to_clipboard",
		"tui_theme", "log_file", "log_level", "verbose", "markdown.style",
	}
}

// Set assigns value to the field named by key and validates the result.
// cfg is left unchanged on error.
func Set(cfg *Config, key, value string) error {
	next := *cfg

	switch key {
	case "endpoint":
		next.Endpoint = value
	case "history_window", "max_ticks":
		n, err := strconv.Atoi(value)
		if err != nil {
			return apierrors.NewConfigError(key, "must be an integer")
		}
		if key == "history_window" {
			next.HistoryWindow = n
		} else {
			next.MaxTicks = n
		}
	case "greeting", "copy_to_clipboard", "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return apierrors.NewConfigError(key, "must be true or false")
		}
		switch key {
		case "greeting":
			next.Greeting = b
		case "copy_to_clipboard":
			next.CopyToClipboard = b
		default:
			next.Verbose = b
		}
	case "tui_theme":
		next.TUITheme = value
	case "log_file":
		next.LogFile = value
	case "log_level":
		next.LogLevel = value
	case "markdown.style":
		next.Markdown.Style = value
	default:
		return apierrors.NewConfigError(key, "unknown key")
	}

	if err := Validate(next); err != nil {
		return err
	}
	*cfg = next
	return nil
}
