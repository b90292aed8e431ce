package bridge

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Command names accepted by the bridge.
const (
	CommandGetWindowInfo      = "getWindowInfo"
	CommandEnumerateWindows   = "enumerateWindows"
	CommandSendKeystrokes     = "sendKeystrokes"
	CommandSendText           = "sendText"
	CommandSetClipboardText   = "setClipboardText"
	CommandSendPaste          = "sendPaste"
	CommandPasteText          = "pasteText"
	CommandSendChar           = "sendChar"
	CommandPostChar           = "postChar"
	CommandSendKeyDown        = "sendKeyDown"
	CommandSendKeyUp          = "sendKeyUp"
	CommandFindWindowByTitle  = "findWindowByTitle"
	CommandFindWindowsByTitle = "findWindowsByTitle"
	CommandSendString         = "sendString"
	CommandPostString         = "postString"
	CommandSendEnter          = "sendEnter"
	CommandSendEscape         = "sendEscape"
	CommandCharToVirtualKey   = "charToVirtualKey"
	CommandPing               = "ping"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// ErrorKind tells callers which class of failure an ERROR response carries.
type ErrorKind string

const (
	KindArgument ErrorKind = "argument"
	KindResource ErrorKind = "resource"
	KindInternal ErrorKind = "internal"
)

// Request is one call: a command name and its positional arguments.
type Request struct {
	Command string            `json:"command"`
	Args    []json.RawMessage `json:"args,omitempty"`
}

// Response is the reply to a Request.
type Response struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorKind ErrorKind       `json:"error_kind,omitempty"`
}

// NewRequest encodes args positionally.
func NewRequest(command string, args ...interface{}) (*Request, error) {
	req := &Request{Command: command}
	for i, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal argument %d", i)
		}
		req.Args = append(req.Args, raw)
	}
	return req, nil
}

// NewOKResponse creates a successful response. A nil data encodes as null.
func NewOKResponse(data interface{}) (*Response, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal response data")
	}
	return &Response{
		Status: StatusOK,
		Data:   bytes,
	}, nil
}

// NewErrorResponse creates an error response.
func NewErrorResponse(kind ErrorKind, errMsg string) *Response {
	return &Response{
		Status:    StatusError,
		Error:     errMsg,
		ErrorKind: kind,
	}
}

// ParseRequest parses a request from JSON bytes.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(err, "failed to parse request")
	}
	if req.Command == "" {
		return nil, errors.New("request has no command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// RemoteError is an ERROR response surfaced by Client.
type RemoteError struct {
	Kind    ErrorKind
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}
