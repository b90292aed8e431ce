// Package actionlog records automation calls made through the bridge and MCP
// surfaces to a rotating log file.
package actionlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/config"
)

// LogLevel defines the logging verbosity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ActionType categorizes a logged call.
type ActionType string

const (
	ActionQuery     ActionType = "QUERY"
	ActionKeys      ActionType = "KEYS"
	ActionTyping    ActionType = "TYPE"
	ActionText      ActionType = "SET-TEXT"
	ActionClipboard ActionType = "CLIPBOARD"
	ActionPaste     ActionType = "PASTE"
	ActionRejected  ActionType = "REJECTED"
	ActionFailed    ActionType = "FAILED"
)

func actionLevel(action ActionType) LogLevel {
	switch action {
	case ActionQuery:
		return LevelDebug
	case ActionRejected:
		return LevelWarn
	case ActionFailed:
		return LevelError
	default:
		return LevelInfo
	}
}

// LogConfig holds configuration for the action logger.
type LogConfig struct {
	Enabled        bool
	Level          LogLevel
	FilePath       string
	MaxSizeMB      int
	MaxFiles       int
	IncludeContent bool
	PreviewLength  int
}

// FromSettings converts the logging section of the config file.
func FromSettings(s config.LoggingConfig) LogConfig {
	return LogConfig{
		Enabled:        s.Enabled,
		Level:          ParseLogLevel(s.Level),
		FilePath:       s.File,
		MaxSizeMB:      s.MaxSizeMB,
		MaxFiles:       s.MaxFiles,
		IncludeContent: s.IncludeContent,
		PreviewLength:  s.PreviewLength,
	}
}

// Logger writes one line per action and rotates the file by size.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	config      LogConfig
	currentSize int64
	now         func() time.Time
}

// NewLogger creates a new logger with the given configuration. A disabled
// config yields a logger that drops everything.
func NewLogger(cfg LogConfig) (*Logger, error) {
	if !cfg.Enabled {
		return &Logger{config: cfg, now: time.Now}, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create log directory %s", dir)
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", cfg.FilePath)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to stat log file")
	}

	return &Logger{
		file:        f,
		config:      cfg,
		currentSize: stat.Size(),
		now:         time.Now,
	}, nil
}

// Log records an action. surface names the caller ("bridge", "ws", "mcp").
func (l *Logger) Log(action ActionType, surface string, details map[string]interface{}) {
	if l == nil || !l.config.Enabled {
		return
	}
	if actionLevel(action) < l.config.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	maxBytes := int64(l.config.MaxSizeMB) * 1024 * 1024
	if l.currentSize >= maxBytes {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(l.now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")
	if surface != "" {
		sb.WriteString(" surface=")
		sb.WriteString(surface)
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch val := details[k].(type) {
		case string:
			fmt.Fprintf(&sb, " %s=%q", k, val)
		default:
			fmt.Fprintf(&sb, " %s=%v", k, val)
		}
	}
	sb.WriteString("\n")

	n, err := l.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

// Preview returns text as it should appear in a log line: whole when content
// logging is on, otherwise truncated to the preview length.
func (l *Logger) Preview(text string) string {
	if l == nil {
		return ""
	}
	if l.config.IncludeContent {
		return text
	}
	return Truncate(text, l.config.PreviewLength)
}

// Close closes the logger and releases resources.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts actions.log -> actions.log.1 -> ... keeping MaxFiles old files.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	basePath := l.config.FilePath
	for i := l.config.MaxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", basePath, i)
		if i == l.config.MaxFiles {
			os.Remove(oldPath)
		} else {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", basePath, i+1))
		}
	}

	if err := os.Rename(basePath, basePath+".1"); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to rotate log file")
	}

	f, err := os.OpenFile(basePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrap(err, "failed to open new log file")
	}

	l.file = f
	l.currentSize = 0
	return nil
}

// ParseLogLevel converts a string to LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Truncate returns at most maxLen runes of s, marking a cut with "...".
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
