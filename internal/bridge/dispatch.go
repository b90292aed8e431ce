package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/actionlog"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

// Dispatcher decodes requests, runs them against the facade, and encodes the
// result. It is shared by every transport.
type Dispatcher struct {
	facade      *automation.Facade
	logger      *actionlog.Logger
	stringDelay time.Duration
}

// NewDispatcher creates a dispatcher. logger may be nil.
func NewDispatcher(facade *automation.Facade, logger *actionlog.Logger, stringDelay time.Duration) *Dispatcher {
	return &Dispatcher{
		facade:      facade,
		logger:      logger,
		stringDelay: stringDelay,
	}
}

type command struct {
	nargs  int
	usage  string
	action actionlog.ActionType
	run    func(d *Dispatcher, ctx context.Context, a args) (interface{}, error)
}

var commands = map[string]command{
	CommandPing: {
		action: actionlog.ActionQuery,
		run: func(*Dispatcher, context.Context, args) (interface{}, error) {
			return "pong", nil
		},
	},
	CommandGetWindowInfo: {
		action: actionlog.ActionQuery,
		run: func(d *Dispatcher, _ context.Context, _ args) (interface{}, error) {
			info, ok := d.facade.ForegroundWindowInfo()
			if !ok {
				return nil, nil
			}
			return info, nil
		},
	},
	CommandEnumerateWindows: {
		action: actionlog.ActionQuery,
		run: func(d *Dispatcher, _ context.Context, _ args) (interface{}, error) {
			return d.facade.VisibleWindows(), nil
		},
	},
	CommandSendKeystrokes: {
		nargs:  2,
		usage:  "sendKeystrokes requires window handle and keystroke type",
		action: actionlog.ActionKeys,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			h, err := a.handle(0)
			if err != nil {
				return nil, err
			}
			kind, err := a.integer(1, "keystroke type")
			if err != nil {
				return nil, err
			}
			return d.facade.SendKeystrokes(h, automation.KeystrokeKind(kind))
		},
	},
	CommandSendText: {
		nargs:  2,
		usage:  "sendText requires window handle and text",
		action: actionlog.ActionText,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			h, err := a.handle(0)
			if err != nil {
				return nil, err
			}
			text, err := a.text(1, "text")
			if err != nil {
				return nil, err
			}
			return d.facade.SetWindowText(h, text), nil
		},
	},
	CommandSetClipboardText: {
		nargs:  1,
		usage:  "setClipboardText requires text",
		action: actionlog.ActionClipboard,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			text, err := a.text(0, "text")
			if err != nil {
				return nil, err
			}
			return d.facade.SetClipboardText(text)
		},
	},
	CommandSendPaste: {
		nargs:  1,
		usage:  "sendPaste requires window handle",
		action: actionlog.ActionPaste,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			h, err := a.handle(0)
			if err != nil {
				return nil, err
			}
			return d.facade.SendPaste(h), nil
		},
	},
	CommandPasteText: {
		nargs:  1,
		usage:  "pasteText requires window handle",
		action: actionlog.ActionPaste,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			h, err := a.handle(0)
			if err != nil {
				return nil, err
			}
			return d.facade.PasteClipboard(h), nil
		},
	},
	CommandSendChar: {
		nargs:  2,
		usage:  "sendChar requires window handle and character",
		action: actionlog.ActionTyping,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			return runChar(a, d.facade.SendChar)
		},
	},
	CommandPostChar: {
		nargs:  2,
		usage:  "postChar requires window handle and character",
		action: actionlog.ActionTyping,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			return runChar(a, d.facade.PostChar)
		},
	},
	CommandSendKeyDown: {
		nargs:  2,
		usage:  "sendKeyDown requires window handle and virtual key code",
		action: actionlog.ActionKeys,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			h, err := a.handle(0)
			if err != nil {
				return nil, err
			}
			vk, err := a.keyCode(1)
			if err != nil {
				return nil, err
			}
			return d.facade.SendKeyDown(h, vk), nil
		},
	},
	CommandSendKeyUp: {
		nargs:  2,
		usage:  "sendKeyUp requires window handle and virtual key code",
		action: actionlog.ActionKeys,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			h, err := a.handle(0)
			if err != nil {
				return nil, err
			}
			vk, err := a.keyCode(1)
			if err != nil {
				return nil, err
			}
			return d.facade.SendKeyUp(h, vk), nil
		},
	},
	CommandFindWindowByTitle: {
		nargs:  1,
		usage:  "findWindowByTitle requires title",
		action: actionlog.ActionQuery,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			title, err := a.text(0, "title")
			if err != nil {
				return nil, err
			}
			w, ok := d.facade.FindWindowByTitle(title)
			if !ok {
				return nil, nil
			}
			return w, nil
		},
	},
	CommandFindWindowsByTitle: {
		nargs:  1,
		usage:  "findWindowsByTitle requires title",
		action: actionlog.ActionQuery,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			title, err := a.text(0, "title")
			if err != nil {
				return nil, err
			}
			return d.facade.FindWindowsByTitle(title), nil
		},
	},
	CommandSendString: {
		nargs:  2,
		usage:  "sendString requires window handle and text",
		action: actionlog.ActionTyping,
		run: func(d *Dispatcher, ctx context.Context, a args) (interface{}, error) {
			return d.runString(ctx, a, d.facade.SendString)
		},
	},
	CommandPostString: {
		nargs:  2,
		usage:  "postString requires window handle and text",
		action: actionlog.ActionTyping,
		run: func(d *Dispatcher, ctx context.Context, a args) (interface{}, error) {
			return d.runString(ctx, a, d.facade.PostString)
		},
	},
	CommandSendEnter: {
		nargs:  1,
		usage:  "sendEnter requires window handle",
		action: actionlog.ActionKeys,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			h, err := a.handle(0)
			if err != nil {
				return nil, err
			}
			return d.facade.SendEnter(h), nil
		},
	},
	CommandSendEscape: {
		nargs:  1,
		usage:  "sendEscape requires window handle",
		action: actionlog.ActionKeys,
		run: func(d *Dispatcher, _ context.Context, a args) (interface{}, error) {
			h, err := a.handle(0)
			if err != nil {
				return nil, err
			}
			return d.facade.SendEscape(h), nil
		},
	},
	CommandCharToVirtualKey: {
		nargs:  1,
		usage:  "charToVirtualKey requires character",
		action: actionlog.ActionQuery,
		run: func(_ *Dispatcher, _ context.Context, a args) (interface{}, error) {
			text, err := a.text(0, "character")
			if err != nil {
				return nil, err
			}
			for _, r := range text {
				return automation.CharToVirtualKey(r), nil
			}
			return nil, &automation.ArgumentError{Err: automation.ErrEmptyCharacter}
		},
	},
}

func runChar(a args, op func(h platform.WindowHandle, text string) (automation.ResultCode, error)) (interface{}, error) {
	h, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	text, err := a.text(1, "character")
	if err != nil {
		return nil, err
	}
	return op(h, text)
}

func (d *Dispatcher) runString(ctx context.Context, a args, op func(context.Context, platform.WindowHandle, string, time.Duration) bool) (interface{}, error) {
	h, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	text, err := a.text(1, "text")
	if err != nil {
		return nil, err
	}
	delayMS, err := a.optionalInteger(2, "delay", d.stringDelay.Milliseconds())
	if err != nil {
		return nil, err
	}
	if delayMS < 0 {
		return nil, automation.Argumentf("delay must be >= 0")
	}
	return op(ctx, h, text, time.Duration(delayMS)*time.Millisecond), nil
}

// Commands returns the accepted command names.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}

// HandleLine parses and handles one encoded request.
func (d *Dispatcher) HandleLine(ctx context.Context, surface string, line []byte) *Response {
	req, err := ParseRequest(line)
	if err != nil {
		d.logger.Log(actionlog.ActionRejected, surface, map[string]interface{}{"error": err.Error()})
		return NewErrorResponse(KindArgument, "invalid request: "+err.Error())
	}
	return d.Handle(ctx, surface, req)
}

// Handle runs req and returns its response. It never returns nil.
func (d *Dispatcher) Handle(ctx context.Context, surface string, req *Request) *Response {
	cmd, ok := commands[req.Command]
	if !ok {
		d.logger.Log(actionlog.ActionRejected, surface, map[string]interface{}{"cmd": req.Command, "error": "unknown command"})
		return NewErrorResponse(KindArgument, "unknown command: "+req.Command)
	}

	a := args{raw: req.Args, usage: cmd.usage}
	result, err := func() (interface{}, error) {
		if err := a.require(cmd.nargs); err != nil {
			return nil, err
		}
		return cmd.run(d, ctx, a)
	}()

	details := map[string]interface{}{"cmd": req.Command}
	if len(req.Args) > 0 {
		details["args"] = d.logger.Preview(joinArgs(req.Args))
	}

	if err != nil {
		kind := errorKind(err)
		details["error"] = err.Error()
		if kind == KindArgument {
			d.logger.Log(actionlog.ActionRejected, surface, details)
		} else {
			d.logger.Log(actionlog.ActionFailed, surface, details)
		}
		return NewErrorResponse(kind, err.Error())
	}

	resp, err := NewOKResponse(result)
	if err != nil {
		details["error"] = err.Error()
		d.logger.Log(actionlog.ActionFailed, surface, details)
		return NewErrorResponse(KindInternal, err.Error())
	}
	details["result"] = string(resp.Data)
	d.logger.Log(cmd.action, surface, details)
	return resp
}

func errorKind(err error) ErrorKind {
	switch {
	case automation.IsArgumentError(err):
		return KindArgument
	case automation.IsResourceError(err):
		return KindResource
	default:
		return KindInternal
	}
}

func joinArgs(raw []json.RawMessage) string {
	parts := make([]string, len(raw))
	for i, r := range raw {
		parts[i] = string(r)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
