// Package mcp exposes the automation facade as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/actionlog"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
)

const (
	ServerName    = "deskbridge"
	ServerVersion = "0.1.0"

	surface = "mcp"
)

// Server is the MCP server for desktop automation.
type Server struct {
	mcpServer   *mcpsdk.Server
	facade      *automation.Facade
	logger      *actionlog.Logger
	stringDelay time.Duration
}

// NewServer creates a server that drives facade. logger may be nil.
func NewServer(facade *automation.Facade, logger *actionlog.Logger, stringDelay time.Duration) *Server {
	s := &Server{
		facade:      facade,
		logger:      logger,
		stringDelay: stringDelay,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close releases server resources.
func (s *Server) Close() error {
	if s == nil || s.logger == nil {
		return nil
	}
	return s.logger.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_foreground_window",
		Description: "Get the title and screen rectangle of the window that currently has focus. found is false when no window is in the foreground.",
	}, s.handleGetForegroundWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List visible top-level windows that have a title, in window-system order. Returns each window's handle for use with the other tools.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_windows",
		Description: "List visible titled windows whose title contains the given text, ignoring case.",
	}, s.handleFindWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_keystrokes",
		Description: "Send a fixed key sequence to a window: enter (Enter down/up) or ctrlv (Ctrl+V). Messages go to the window directly; it does not need focus.",
	}, s.handleSendKeystrokes)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_text",
		Description: "Replace a window's text (the title of a top-level window, or the content of an edit control).",
	}, s.handleSetWindowText)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_clipboard_text",
		Description: "Replace the system clipboard contents with Unicode text. Fails if another process holds the clipboard.",
	}, s.handleSetClipboardText)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_paste",
		Description: "Send Ctrl+V to a window. Always reports success; delivery is not checked.",
	}, s.handleSendPaste)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "paste_clipboard",
		Description: "Ask a window to paste the clipboard with a paste message instead of a key chord.",
	}, s.handlePasteClipboard)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_char",
		Description: "Deliver one character to a window and wait for it to be processed. code is 0 on success and 1 on failure.",
	}, s.handleSendChar)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "post_char",
		Description: "Queue one character for a window without waiting. code is 0 when queued and 1 otherwise.",
	}, s.handlePostChar)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_key",
		Description: "Send a raw virtual key code to a window as key-down, key-up, or both (press). code is 0 on success and 1 on failure.",
	}, s.handleSendKey)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "type_text",
		Description: "Type text into a window one character at a time with a delay between characters. success is true if at least one character was delivered.",
	}, s.handleTypeText)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_enter",
		Description: "Send Enter down and up to a window. Always reports success; delivery is not checked.",
	}, s.handleSendEnter)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_escape",
		Description: "Send Escape down and up to a window. success is true only if both were delivered.",
	}, s.handleSendEscape)
}

func (s *Server) log(action actionlog.ActionType, tool string, details map[string]interface{}, err error) {
	if s.logger == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	details["tool"] = tool
	if err != nil {
		details["error"] = err.Error()
		if automation.IsArgumentError(err) {
			action = actionlog.ActionRejected
		} else {
			action = actionlog.ActionFailed
		}
	}
	s.logger.Log(action, surface, details)
}
