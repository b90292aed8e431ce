//go:build windows

package platform

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
	procSendMessageW        = user32.NewProc("SendMessageW")
	procPostMessageW        = user32.NewProc("PostMessageW")
	procOpenClipboard       = user32.NewProc("OpenClipboard")
	procEmptyClipboard      = user32.NewProc("EmptyClipboard")
	procCloseClipboard      = user32.NewProc("CloseClipboard")
	procSetClipboardData    = user32.NewProc("SetClipboardData")

	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
	procGlobalFree   = kernel32.NewProc("GlobalFree")
)

const gmemMoveable = 0x0002

type winRect struct {
	Left, Top, Right, Bottom int32
}

// The callback slot is allocated once; windows.NewCallback handles are never
// released by the runtime.
var (
	enumMu       sync.Mutex
	enumVisit    func(WindowHandle) bool
	enumCallback = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		if enumVisit(HandleFromRaw(uintptr(hwnd))) {
			return 1
		}
		return 0
	})
)

// Win32Backend calls user32 and kernel32 directly.
type Win32Backend struct{}

var _ Backend = (*Win32Backend)(nil)

// Open returns the Win32 backend. The DLLs load on first use.
func Open() (Backend, error) {
	if err := user32.Load(); err != nil {
		return nil, err
	}
	if err := kernel32.Load(); err != nil {
		return nil, err
	}
	return &Win32Backend{}, nil
}

func (b *Win32Backend) ForegroundWindow() WindowHandle {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return HandleFromRaw(hwnd)
}

func (b *Win32Backend) EnumWindows(fn func(WindowHandle) bool) error {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumVisit = fn
	defer func() { enumVisit = nil }()

	// A zero return also means the callback stopped early.
	procEnumWindows.Call(enumCallback, 0)
	return nil
}

func (b *Win32Backend) WindowText(h WindowHandle, maxUnits int) []uint16 {
	if maxUnits <= 0 {
		return nil
	}
	buf := make([]uint16, maxUnits)
	n, _, _ := procGetWindowTextW.Call(h.Raw(), uintptr(unsafe.Pointer(&buf[0])), uintptr(maxUnits))
	return buf[:n]
}

func (b *Win32Backend) WindowRect(h WindowHandle) (Rect, bool) {
	var r winRect
	ok, _, _ := procGetWindowRect.Call(h.Raw(), uintptr(unsafe.Pointer(&r)))
	return Rect{
		Left:   int(r.Left),
		Top:    int(r.Top),
		Right:  int(r.Right),
		Bottom: int(r.Bottom),
	}, ok != 0
}

func (b *Win32Backend) IsWindowVisible(h WindowHandle) bool {
	ret, _, _ := procIsWindowVisible.Call(h.Raw())
	return ret != 0
}

func (b *Win32Backend) SendMessage(h WindowHandle, msg uint32, wparam, lparam uintptr) uintptr {
	ret, _, _ := procSendMessageW.Call(h.Raw(), uintptr(msg), wparam, lparam)
	return ret
}

func (b *Win32Backend) PostMessage(h WindowHandle, msg uint32, wparam, lparam uintptr) bool {
	ret, _, _ := procPostMessageW.Call(h.Raw(), uintptr(msg), wparam, lparam)
	return ret != 0
}

func (b *Win32Backend) SendTextMessage(h WindowHandle, msg uint32, text []uint16) uintptr {
	if len(text) == 0 || text[len(text)-1] != 0 {
		text = append(text, 0)
	}
	ret, _, _ := procSendMessageW.Call(h.Raw(), uintptr(msg), 0, uintptr(unsafe.Pointer(&text[0])))
	return ret
}

func (b *Win32Backend) OpenClipboard() bool {
	ret, _, _ := procOpenClipboard.Call(0)
	return ret != 0
}

func (b *Win32Backend) EmptyClipboard() bool {
	ret, _, _ := procEmptyClipboard.Call()
	return ret != 0
}

func (b *Win32Backend) CloseClipboard() bool {
	ret, _, _ := procCloseClipboard.Call()
	return ret != 0
}

func (b *Win32Backend) GlobalAllocText(text []uint16) (MemHandle, bool) {
	size := uintptr(len(text)) * unsafe.Sizeof(text[0])
	mem, _, _ := procGlobalAlloc.Call(gmemMoveable, size)
	if mem == 0 {
		return 0, false
	}

	ptr, _, _ := procGlobalLock.Call(mem)
	if ptr == 0 {
		procGlobalFree.Call(mem)
		return 0, false
	}
	dst := unsafe.Slice((*uint16)(unsafe.Pointer(ptr)), len(text))
	copy(dst, text)
	procGlobalUnlock.Call(mem)

	return MemHandle(mem), true
}

func (b *Win32Backend) SetClipboardData(format uint32, mem MemHandle) bool {
	ret, _, _ := procSetClipboardData.Call(uintptr(format), uintptr(mem))
	return ret != 0
}

func (b *Win32Backend) GlobalFree(mem MemHandle) {
	procGlobalFree.Call(uintptr(mem))
}

// Close is a no-op; the DLLs stay mapped for the life of the process.
func (b *Win32Backend) Close() error {
	return nil
}
