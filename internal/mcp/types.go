package mcp

// Handles are plain integers on this surface so the generated input schema
// stays a number.

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// WindowOutput describes one top-level window.
type WindowOutput struct {
	Handle uint64 `json:"handle"`
	Title  string `json:"title"`
}

// ForegroundOutput is the output for the get_foreground_window tool.
type ForegroundOutput struct {
	Found  bool   `json:"found"`
	Title  string `json:"title,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ListWindowsOutput is the output for the list_windows and find_windows tools.
type ListWindowsOutput struct {
	Windows []WindowOutput `json:"windows"`
}

// FindWindowsInput is the input for the find_windows tool.
type FindWindowsInput struct {
	Title string `json:"title" jsonschema:"Case-insensitive substring of the window title"`
}

// HandleInput is the input for tools that only target a window.
type HandleInput struct {
	Handle uint64 `json:"handle" jsonschema:"Window handle from list_windows or find_windows"`
}

// SendKeystrokesInput is the input for the send_keystrokes tool.
type SendKeystrokesInput struct {
	Handle uint64 `json:"handle" jsonschema:"Window handle from list_windows or find_windows"`
	Kind   string `json:"kind" jsonschema:"Keystroke sequence: enter or ctrlv"`
}

// SetWindowTextInput is the input for the set_window_text tool.
type SetWindowTextInput struct {
	Handle uint64 `json:"handle" jsonschema:"Window handle from list_windows or find_windows"`
	Text   string `json:"text" jsonschema:"Replacement text for the window or control"`
}

// SetClipboardTextInput is the input for the set_clipboard_text tool.
type SetClipboardTextInput struct {
	Text string `json:"text" jsonschema:"Text to place on the system clipboard"`
}

// CharInput is the input for the send_char and post_char tools.
type CharInput struct {
	Handle uint64 `json:"handle" jsonschema:"Window handle from list_windows or find_windows"`
	Char   string `json:"char" jsonschema:"Character to deliver; only the first UTF-16 unit is used"`
}

// SendKeyInput is the input for the send_key tool.
type SendKeyInput struct {
	Handle  uint64 `json:"handle" jsonschema:"Window handle from list_windows or find_windows"`
	KeyCode uint32 `json:"key_code" jsonschema:"Virtual key code, sent without validation"`
	Action  string `json:"action,omitempty" jsonschema:"down, up or press (default: press)"`
}

// TypeTextInput is the input for the type_text tool.
type TypeTextInput struct {
	Handle  uint64 `json:"handle" jsonschema:"Window handle from list_windows or find_windows"`
	Text    string `json:"text" jsonschema:"Text to type one character at a time"`
	Post    bool   `json:"post,omitempty" jsonschema:"Queue characters without waiting for the window (default: false)"`
	DelayMS *int   `json:"delay_ms,omitempty" jsonschema:"Delay between characters in milliseconds (default: from config)"`
}

// SuccessOutput is the output for tools that report a single success flag.
type SuccessOutput struct {
	Success bool `json:"success"`
}

// CodeOutput is the output for single-message tools. Code keeps the inverted
// convention: 0 means delivered, 1 means not delivered.
type CodeOutput struct {
	Code int  `json:"code"`
	OK   bool `json:"ok"`
}
