package automation

import (
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

// clipboardSession holds the system clipboard open. The clipboard is a
// process-wide exclusive resource and must be closed before the call returns.
type clipboardSession struct {
	host platform.ClipboardHost
}

func openClipboard(host platform.ClipboardHost) (*clipboardSession, error) {
	if !host.OpenClipboard() {
		return nil, &ResourceError{Err: ErrClipboardOpen}
	}
	return &clipboardSession{host: host}, nil
}

func (s *clipboardSession) Close() {
	s.host.CloseClipboard()
}

// ownedMemory is a movable memory block the caller is responsible for.
type ownedMemory struct {
	host platform.ClipboardHost
	mem  platform.MemHandle
}

func allocText(host platform.ClipboardHost, text []uint16) (ownedMemory, bool) {
	mem, ok := host.GlobalAllocText(text)
	if !ok || mem == 0 {
		return ownedMemory{}, false
	}
	return ownedMemory{host: host, mem: mem}, true
}

// transfer hands the block to the clipboard. It returns nil once the OS owns
// the block. On failure ownership returns to the caller through the result,
// which must be released.
func (m ownedMemory) transfer(format uint32) *ownedMemory {
	if m.host.SetClipboardData(format, m.mem) {
		return nil
	}
	return &m
}

func (m *ownedMemory) release() {
	m.host.GlobalFree(m.mem)
	m.mem = 0
}

// SetClipboardText replaces the clipboard contents with text.
//
// The clipboard is opened and emptied, a block sized for the text and its
// terminator is allocated and filled, and the block is handed to the
// clipboard. A failed hand-off frees the block. The clipboard is closed on
// every path.
func (f *Facade) SetClipboardText(text string) (bool, error) {
	session, err := openClipboard(f.os)
	if err != nil {
		return false, err
	}
	defer session.Close()

	f.os.EmptyClipboard()

	mem, ok := allocText(f.os, terminated(text))
	if !ok {
		return false, &ResourceError{Err: ErrClipboardAlloc}
	}

	if back := mem.transfer(platform.CFUnicodeText); back != nil {
		back.release()
		return false, &ResourceError{Err: ErrClipboardSetData}
	}
	return true, nil
}
