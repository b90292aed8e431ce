package config

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultTimeoutMS     = 5000
	DefaultTypingDelayMS = 10
)

// Config is the deskbridge configuration file.
type Config struct {
	Bridge  BridgeConfig  `yaml:"bridge"`
	Typing  TypingConfig  `yaml:"typing"`
	Logging LoggingConfig `yaml:"logging"`
}

// BridgeConfig configures the local call surfaces.
type BridgeConfig struct {
	// Socket overrides the unix socket path (default: runtime dir)
	Socket string `yaml:"socket,omitempty"`
	// WebsocketAddr enables the websocket endpoint when set, e.g. "127.0.0.1:8765"
	WebsocketAddr string `yaml:"websocket_addr,omitempty"`
	// TimeoutMS bounds a single request read/write on the socket
	TimeoutMS int `yaml:"timeout_ms"`
}

// TypingConfig configures SendString/PostString.
type TypingConfig struct {
	// DelayMS is the pause between characters
	DelayMS int `yaml:"delay_ms"`
}

// LoggingConfig configures action logging for the bridge and MCP surfaces.
type LoggingConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: ~/.local/share/deskbridge/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
	// IncludeContent logs full typed and clipboard text (default: false)
	IncludeContent bool `yaml:"include_content,omitempty"`
	// PreviewLength is the number of characters to preview in log (default: 50)
	PreviewLength int `yaml:"preview_length,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			TimeoutMS: DefaultTimeoutMS,
		},
		Typing: TypingConfig{
			DelayMS: DefaultTypingDelayMS,
		},
	}
}

// Timeout returns the per-request socket deadline.
func (c *Config) Timeout() time.Duration {
	if c == nil || c.Bridge.TimeoutMS <= 0 {
		return DefaultTimeoutMS * time.Millisecond
	}
	return time.Duration(c.Bridge.TimeoutMS) * time.Millisecond
}

// StringDelay returns the pause between typed characters.
func (c *Config) StringDelay() time.Duration {
	if c == nil {
		return DefaultTypingDelayMS * time.Millisecond
	}
	return time.Duration(c.Typing.DelayMS) * time.Millisecond
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local", "share", "deskbridge", "actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = 50
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Bridge.TimeoutMS < 0 {
		return &ValidationError{Path: "bridge.timeout_ms", Err: errors.New("timeout_ms must be >= 0")}
	}
	if addr := strings.TrimSpace(c.Bridge.WebsocketAddr); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return &ValidationError{Path: "bridge.websocket_addr", Err: errors.Wrap(err, "websocket_addr must be host:port")}
		}
	}
	if c.Typing.DelayMS < 0 {
		return &ValidationError{Path: "typing.delay_ms", Err: errors.New("delay_ms must be >= 0")}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: errors.New("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: errors.New("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: errors.New("max_files must be >= 0")}
	}
	if c.Logging.PreviewLength < 0 {
		return &ValidationError{Path: "logging.preview_length", Err: errors.New("preview_length must be >= 0")}
	}
	return nil
}
