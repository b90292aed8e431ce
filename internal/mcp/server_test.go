package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/actionlog"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform/platformtest"
)

func newTestServer(t *testing.T, windows ...platformtest.Window) (*Server, *platformtest.Fake) {
	t.Helper()
	fake := platformtest.New(windows...)
	return NewServer(automation.New(fake), nil, 0), fake
}

func connect(t *testing.T, s *Server) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]interface{}, out interface{}) *mcpsdk.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		if err != nil {
			t.Fatalf("marshal structured content: %v", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode %s output %s: %v", name, data, err)
		}
	}
	return res
}

func errorText(res *mcpsdk.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestToolsListed(t *testing.T) {
	s, _ := newTestServer(t)
	session := connect(t, s)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	var got []string
	for _, tool := range res.Tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)

	want := []string{
		"find_windows",
		"get_foreground_window",
		"list_windows",
		"paste_clipboard",
		"post_char",
		"send_char",
		"send_enter",
		"send_escape",
		"send_key",
		"send_keystrokes",
		"send_paste",
		"set_clipboard_text",
		"set_window_text",
		"type_text",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("tools = %v, want %v", got, want)
	}
}

func TestWindowTools(t *testing.T) {
	s, fake := newTestServer(t,
		platformtest.Window{Handle: platform.HandleFromRaw(11), Title: "Editor - notes.txt", Rect: platform.Rect{Left: 5, Top: 6, Right: 105, Bottom: 56}},
		platformtest.Window{Handle: platform.HandleFromRaw(12), Title: ""},
		platformtest.Window{Handle: platform.HandleFromRaw(13), Title: "Terminal"},
	)
	session := connect(t, s)

	var fg ForegroundOutput
	callTool(t, session, "get_foreground_window", map[string]interface{}{}, &fg)
	if fg.Found {
		t.Fatalf("expected no foreground window, got %+v", fg)
	}

	fake.Foreground = platform.HandleFromRaw(11)
	callTool(t, session, "get_foreground_window", map[string]interface{}{}, &fg)
	if !fg.Found || fg.Title != "Editor - notes.txt" || fg.X != 5 || fg.Y != 6 || fg.Width != 100 || fg.Height != 50 {
		t.Fatalf("foreground = %+v", fg)
	}

	var list ListWindowsOutput
	callTool(t, session, "list_windows", map[string]interface{}{}, &list)
	if len(list.Windows) != 2 || list.Windows[0].Handle != 11 || list.Windows[1].Title != "Terminal" {
		t.Fatalf("list_windows = %+v", list)
	}

	var found ListWindowsOutput
	callTool(t, session, "find_windows", map[string]interface{}{"title": "NOTES"}, &found)
	if len(found.Windows) != 1 || found.Windows[0].Handle != 11 {
		t.Fatalf("find_windows = %+v", found)
	}
}

func TestInputTools(t *testing.T) {
	s, fake := newTestServer(t)
	session := connect(t, s)

	var success SuccessOutput
	callTool(t, session, "send_keystrokes", map[string]interface{}{"handle": 7, "kind": "ctrlv"}, &success)
	if !success.Success {
		t.Fatal("send_keystrokes reported failure")
	}
	if n := len(fake.Sent()); n != 4 {
		t.Fatalf("ctrlv sent %d messages, want 4", n)
	}

	callTool(t, session, "set_clipboard_text", map[string]interface{}{"text": "héllo"}, &success)
	if !success.Success || fake.Clipboard != "héllo" {
		t.Fatalf("clipboard = %q, success = %v", fake.Clipboard, success.Success)
	}

	var code CodeOutput
	callTool(t, session, "send_char", map[string]interface{}{"handle": 7, "char": "x"}, &code)
	if code.Code != 0 || !code.OK {
		t.Fatalf("send_char = %+v", code)
	}

	fake.SendReturn = 0
	callTool(t, session, "send_key", map[string]interface{}{"handle": 7, "key_code": 65, "action": "down"}, &code)
	if code.Code != 1 || code.OK {
		t.Fatalf("send_key = %+v, want code 1", code)
	}

	fake.SendReturn = 1
	before := len(fake.Sent())
	callTool(t, session, "type_text", map[string]interface{}{"handle": 7, "text": "abc", "delay_ms": 0}, &success)
	if !success.Success {
		t.Fatal("type_text reported failure")
	}
	if n := len(fake.Sent()) - before; n != 3 {
		t.Fatalf("type_text sent %d messages, want 3", n)
	}
}

func TestDeliveryResultsMatchDescriptions(t *testing.T) {
	s, fake := newTestServer(t)
	session := connect(t, s)

	var success SuccessOutput
	fake.SendReturn = 0
	callTool(t, session, "send_enter", map[string]interface{}{"handle": 7}, &success)
	if !success.Success {
		t.Fatal("send_enter should report success without checking delivery")
	}

	callTool(t, session, "type_text", map[string]interface{}{"handle": 7, "text": "abc", "delay_ms": 0}, &success)
	if success.Success {
		t.Fatal("type_text reported success with nothing delivered")
	}

	fake.SendReturns = []uintptr{0, 0}
	fake.SendReturn = 1
	callTool(t, session, "type_text", map[string]interface{}{"handle": 7, "text": "abc", "delay_ms": 0}, &success)
	if !success.Success {
		t.Fatal("type_text with one delivered character reported failure")
	}
}

func TestArgumentErrorsAreToolErrors(t *testing.T) {
	s, fake := newTestServer(t)
	session := connect(t, s)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"send_keystrokes", map[string]interface{}{"handle": 1, "kind": "tab"}, "unknown keystroke type"},
		{"send_char", map[string]interface{}{"handle": 1, "char": ""}, "character cannot be empty"},
		{"send_key", map[string]interface{}{"handle": 1, "key_code": 13, "action": "hold"}, "unknown key action"},
		{"type_text", map[string]interface{}{"handle": 1, "text": "a", "delay_ms": -5}, "delay_ms must be >= 0"},
	}

	for _, tt := range tests {
		res := callTool(t, session, tt.name, tt.args, nil)
		if !res.IsError {
			t.Errorf("%s: expected tool error", tt.name)
			continue
		}
		if !strings.Contains(errorText(res), tt.want) {
			t.Errorf("%s: error %q does not contain %q", tt.name, errorText(res), tt.want)
		}
	}
	if n := len(fake.Sent()); n != 0 {
		t.Fatalf("argument errors sent %d messages", n)
	}
}

func TestClipboardFailureIsToolError(t *testing.T) {
	s, fake := newTestServer(t)
	fake.AllocFails = true
	session := connect(t, s)

	res := callTool(t, session, "set_clipboard_text", map[string]interface{}{"text": "x"}, nil)
	if !res.IsError || !strings.Contains(errorText(res), "failed to allocate memory for clipboard") {
		t.Fatalf("unexpected result %+v", res)
	}
	if fake.ClipboardOpen {
		t.Fatal("clipboard left open")
	}
}

func TestHandlersLogActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	logger, err := actionlog.NewLogger(actionlog.LogConfig{
		Enabled:       true,
		Level:         actionlog.LevelInfo,
		FilePath:      path,
		MaxSizeMB:     1,
		MaxFiles:      1,
		PreviewLength: 4,
	})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	s := NewServer(automation.New(platformtest.New()), logger, 0)
	ctx := context.Background()

	if _, _, err := s.handleSetWindowText(ctx, nil, SetWindowTextInput{Handle: 3, Text: "a long title"}); err != nil {
		t.Fatalf("handleSetWindowText: %v", err)
	}
	if _, _, err := s.handleSendKeystrokes(ctx, nil, SendKeystrokesInput{Handle: 3, Kind: "bogus"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := readLog(t, path)
	if !strings.Contains(data, `[SET-TEXT] surface=mcp handle=3 success=true text_length=12 text_preview="a lo..." tool="set_window_text"`) {
		t.Fatalf("missing SET-TEXT entry in %q", data)
	}
	if !strings.Contains(data, `[REJECTED] surface=mcp error="unknown keystroke type"`) {
		t.Fatalf("missing REJECTED entry in %q", data)
	}
}
