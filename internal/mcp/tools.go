package mcp

import (
	"context"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/actionlog"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

func toHandle(raw uint64) platform.WindowHandle {
	return platform.HandleFromRaw(uintptr(raw))
}

func toWindowOutputs(entries []automation.WindowEntry) []WindowOutput {
	out := make([]WindowOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, WindowOutput{Handle: uint64(e.Handle.Raw()), Title: e.Title})
	}
	return out
}

func codeOutput(code automation.ResultCode) CodeOutput {
	return CodeOutput{Code: int(code), OK: code == automation.CodeOK}
}

func (s *Server) addTextDetails(details map[string]interface{}, text string) {
	details["text_length"] = len(text)
	details["text_preview"] = s.logger.Preview(text)
}

func (s *Server) handleGetForegroundWindow(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ForegroundOutput, error) {
	info, ok := s.facade.ForegroundWindowInfo()
	s.log(actionlog.ActionQuery, "get_foreground_window", map[string]interface{}{"found": ok}, nil)
	if !ok {
		return nil, ForegroundOutput{}, nil
	}
	return nil, ForegroundOutput{
		Found:  true,
		Title:  info.Title,
		X:      info.X,
		Y:      info.Y,
		Width:  info.Width,
		Height: info.Height,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows := toWindowOutputs(s.facade.VisibleWindows())
	s.log(actionlog.ActionQuery, "list_windows", map[string]interface{}{"count": len(windows)}, nil)
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleFindWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args FindWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows := toWindowOutputs(s.facade.FindWindowsByTitle(args.Title))
	s.log(actionlog.ActionQuery, "find_windows", map[string]interface{}{
		"title": args.Title,
		"count": len(windows),
	}, nil)
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleSendKeystrokes(_ context.Context, _ *mcpsdk.CallToolRequest, args SendKeystrokesInput) (*mcpsdk.CallToolResult, SuccessOutput, error) {
	details := map[string]interface{}{"handle": args.Handle, "kind": args.Kind}

	kind, ok := automation.ParseKeystrokeKind(args.Kind)
	if !ok {
		err := &automation.ArgumentError{Err: automation.ErrUnknownKeystroke}
		s.log(actionlog.ActionKeys, "send_keystrokes", details, err)
		return nil, SuccessOutput{}, err
	}

	sent, err := s.facade.SendKeystrokes(toHandle(args.Handle), kind)
	s.log(actionlog.ActionKeys, "send_keystrokes", details, err)
	if err != nil {
		return nil, SuccessOutput{}, err
	}
	return nil, SuccessOutput{Success: sent}, nil
}

func (s *Server) handleSetWindowText(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowTextInput) (*mcpsdk.CallToolResult, SuccessOutput, error) {
	ok := s.facade.SetWindowText(toHandle(args.Handle), args.Text)

	details := map[string]interface{}{"handle": args.Handle, "success": ok}
	s.addTextDetails(details, args.Text)
	s.log(actionlog.ActionText, "set_window_text", details, nil)
	return nil, SuccessOutput{Success: ok}, nil
}

func (s *Server) handleSetClipboardText(_ context.Context, _ *mcpsdk.CallToolRequest, args SetClipboardTextInput) (*mcpsdk.CallToolResult, SuccessOutput, error) {
	ok, err := s.facade.SetClipboardText(args.Text)

	details := map[string]interface{}{}
	s.addTextDetails(details, args.Text)
	s.log(actionlog.ActionClipboard, "set_clipboard_text", details, err)
	if err != nil {
		return nil, SuccessOutput{}, err
	}
	return nil, SuccessOutput{Success: ok}, nil
}

func (s *Server) handleSendPaste(_ context.Context, _ *mcpsdk.CallToolRequest, args HandleInput) (*mcpsdk.CallToolResult, SuccessOutput, error) {
	ok := s.facade.SendPaste(toHandle(args.Handle))
	s.log(actionlog.ActionPaste, "send_paste", map[string]interface{}{"handle": args.Handle}, nil)
	return nil, SuccessOutput{Success: ok}, nil
}

func (s *Server) handlePasteClipboard(_ context.Context, _ *mcpsdk.CallToolRequest, args HandleInput) (*mcpsdk.CallToolResult, SuccessOutput, error) {
	ok := s.facade.PasteClipboard(toHandle(args.Handle))
	s.log(actionlog.ActionPaste, "paste_clipboard", map[string]interface{}{"handle": args.Handle, "success": ok}, nil)
	return nil, SuccessOutput{Success: ok}, nil
}

func (s *Server) handleSendChar(_ context.Context, _ *mcpsdk.CallToolRequest, args CharInput) (*mcpsdk.CallToolResult, CodeOutput, error) {
	code, err := s.facade.SendChar(toHandle(args.Handle), args.Char)
	s.log(actionlog.ActionTyping, "send_char", map[string]interface{}{"handle": args.Handle, "code": int(code)}, err)
	if err != nil {
		return nil, CodeOutput{}, err
	}
	return nil, codeOutput(code), nil
}

func (s *Server) handlePostChar(_ context.Context, _ *mcpsdk.CallToolRequest, args CharInput) (*mcpsdk.CallToolResult, CodeOutput, error) {
	code, err := s.facade.PostChar(toHandle(args.Handle), args.Char)
	s.log(actionlog.ActionTyping, "post_char", map[string]interface{}{"handle": args.Handle, "code": int(code)}, err)
	if err != nil {
		return nil, CodeOutput{}, err
	}
	return nil, codeOutput(code), nil
}

func (s *Server) handleSendKey(_ context.Context, _ *mcpsdk.CallToolRequest, args SendKeyInput) (*mcpsdk.CallToolResult, CodeOutput, error) {
	h := toHandle(args.Handle)
	action := strings.ToLower(strings.TrimSpace(args.Action))
	details := map[string]interface{}{"handle": args.Handle, "key_code": args.KeyCode, "action": action}

	var code automation.ResultCode
	switch action {
	case "down":
		code = s.facade.SendKeyDown(h, args.KeyCode)
	case "up":
		code = s.facade.SendKeyUp(h, args.KeyCode)
	case "", "press":
		down := s.facade.SendKeyDown(h, args.KeyCode)
		up := s.facade.SendKeyUp(h, args.KeyCode)
		code = automation.CodeOK
		if down != automation.CodeOK || up != automation.CodeOK {
			code = automation.CodeFailed
		}
	default:
		err := automation.Argumentf("unknown key action %q; use down, up or press", args.Action)
		s.log(actionlog.ActionKeys, "send_key", details, err)
		return nil, CodeOutput{}, err
	}

	details["code"] = int(code)
	s.log(actionlog.ActionKeys, "send_key", details, nil)
	return nil, codeOutput(code), nil
}

func (s *Server) handleTypeText(ctx context.Context, _ *mcpsdk.CallToolRequest, args TypeTextInput) (*mcpsdk.CallToolResult, SuccessOutput, error) {
	delay := s.stringDelay
	if args.DelayMS != nil {
		if *args.DelayMS < 0 {
			err := automation.Argumentf("delay_ms must be >= 0")
			s.log(actionlog.ActionTyping, "type_text", map[string]interface{}{"handle": args.Handle}, err)
			return nil, SuccessOutput{}, err
		}
		delay = time.Duration(*args.DelayMS) * time.Millisecond
	}

	h := toHandle(args.Handle)
	var ok bool
	if args.Post {
		ok = s.facade.PostString(ctx, h, args.Text, delay)
	} else {
		ok = s.facade.SendString(ctx, h, args.Text, delay)
	}

	details := map[string]interface{}{
		"handle":   args.Handle,
		"post":     args.Post,
		"delay_ms": delay.Milliseconds(),
		"success":  ok,
	}
	s.addTextDetails(details, args.Text)
	s.log(actionlog.ActionTyping, "type_text", details, nil)
	return nil, SuccessOutput{Success: ok}, nil
}

func (s *Server) handleSendEnter(_ context.Context, _ *mcpsdk.CallToolRequest, args HandleInput) (*mcpsdk.CallToolResult, SuccessOutput, error) {
	ok := s.facade.SendEnter(toHandle(args.Handle))
	s.log(actionlog.ActionKeys, "send_enter", map[string]interface{}{"handle": args.Handle, "success": ok}, nil)
	return nil, SuccessOutput{Success: ok}, nil
}

func (s *Server) handleSendEscape(_ context.Context, _ *mcpsdk.CallToolRequest, args HandleInput) (*mcpsdk.CallToolResult, SuccessOutput, error) {
	ok := s.facade.SendEscape(toHandle(args.Handle))
	s.log(actionlog.ActionKeys, "send_escape", map[string]interface{}{"handle": args.Handle, "success": ok}, nil)
	return nil, SuccessOutput{Success: ok}, nil
}
