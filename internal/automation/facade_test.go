package automation

import (
	"strings"
	"testing"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform/platformtest"
)

func handle(raw uintptr) platform.WindowHandle {
	return platform.HandleFromRaw(raw)
}

func TestForegroundWindowInfoAbsent(t *testing.T) {
	fake := platformtest.New()
	f := New(fake)

	if info, ok := f.ForegroundWindowInfo(); ok {
		t.Fatalf("expected no foreground window, got %+v", info)
	}
}

func TestForegroundWindowInfo(t *testing.T) {
	fake := platformtest.New(platformtest.Window{
		Handle: handle(42),
		Title:  "Editor",
		Rect:   platform.Rect{Left: 10, Top: 20, Right: 110, Bottom: 70},
	})
	fake.Foreground = handle(42)

	info, ok := New(fake).ForegroundWindowInfo()
	if !ok {
		t.Fatal("expected a foreground window")
	}
	want := WindowInfo{Title: "Editor", X: 10, Y: 20, Width: 100, Height: 50}
	if info != want {
		t.Fatalf("info = %+v, want %+v", info, want)
	}
}

func TestForegroundWindowInfoNegativeCoordinates(t *testing.T) {
	fake := platformtest.New(platformtest.Window{
		Handle: handle(7),
		Title:  "Left monitor",
		Rect:   platform.Rect{Left: -1920, Top: -8, Right: -10, Bottom: 1032},
	})
	fake.Foreground = handle(7)

	info, _ := New(fake).ForegroundWindowInfo()
	if info.X != -1920 || info.Y != -8 || info.Width != 1910 || info.Height != 1040 {
		t.Fatalf("unexpected geometry %+v", info)
	}
}

func TestForegroundWindowTitleTruncated(t *testing.T) {
	long := strings.Repeat("x", 400)
	fake := platformtest.New(platformtest.Window{Handle: handle(1), Title: long})
	fake.Foreground = handle(1)

	info, _ := New(fake).ForegroundWindowInfo()
	if len(info.Title) != titleCapacity-1 {
		t.Fatalf("title length = %d, want %d", len(info.Title), titleCapacity-1)
	}
}

func TestVisibleWindowsFilters(t *testing.T) {
	fake := platformtest.New(
		platformtest.Window{Handle: handle(1), Title: "Visible A"},
		platformtest.Window{Handle: handle(2), Title: ""},
		platformtest.Window{Handle: handle(3), Title: "Hidden", Hidden: true},
		platformtest.Window{Handle: handle(4), Title: "Visible B"},
		platformtest.Window{Handle: handle(5), Title: "", Hidden: true},
	)

	got := New(fake).VisibleWindows()
	want := []WindowEntry{
		{Title: "Visible A", Handle: handle(1)},
		{Title: "Visible B", Handle: handle(4)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestVisibleWindowsEmptyIsNonNil(t *testing.T) {
	got := New(platformtest.New()).VisibleWindows()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSetWindowText(t *testing.T) {
	fake := platformtest.New()
	f := New(fake)

	if !f.SetWindowText(handle(9), "héllo") {
		t.Fatal("expected success when the OS returns non-zero")
	}
	sent := fake.Sent()
	if len(sent) != 1 || sent[0].Msg != platform.MsgSetText || sent[0].Text != "héllo" {
		t.Fatalf("unexpected messages %+v", sent)
	}

	fake.SendReturn = 0
	if f.SetWindowText(handle(9), "x") {
		t.Fatal("expected failure when the OS returns zero")
	}
}

func TestSetWindowTextInvalidUTF8BecomesEmpty(t *testing.T) {
	fake := platformtest.New()
	New(fake).SetWindowText(handle(9), "ab\xffcd")

	sent := fake.Sent()
	if len(sent) != 1 || sent[0].Text != "" {
		t.Fatalf("expected empty text, got %+v", sent)
	}
}

func TestPasteClipboard(t *testing.T) {
	fake := platformtest.New()
	f := New(fake)

	if !f.PasteClipboard(handle(3)) {
		t.Fatal("expected true for non-zero result")
	}
	fake.SendReturn = 0
	if f.PasteClipboard(handle(3)) {
		t.Fatal("expected false for zero result")
	}

	for _, m := range fake.Sent() {
		if m.Msg != platform.MsgPaste || m.Handle != handle(3) {
			t.Fatalf("unexpected message %+v", m)
		}
	}
}

func TestFindWindowsByTitle(t *testing.T) {
	fake := platformtest.New(
		platformtest.Window{Handle: handle(1), Title: "Notepad - notes.txt"},
		platformtest.Window{Handle: handle(2), Title: "Calculator"},
		platformtest.Window{Handle: handle(3), Title: "NOTEPAD - todo.txt"},
		platformtest.Window{Handle: handle(4), Title: "notepad hidden", Hidden: true},
	)
	f := New(fake)

	all := f.FindWindowsByTitle("notepad")
	if len(all) != 2 || all[0].Handle != handle(1) || all[1].Handle != handle(3) {
		t.Fatalf("unexpected matches %+v", all)
	}

	first, ok := f.FindWindowByTitle("NotePad")
	if !ok || first.Handle != handle(1) {
		t.Fatalf("FindWindowByTitle = %+v, %v", first, ok)
	}

	if _, ok := f.FindWindowByTitle("browser"); ok {
		t.Fatal("expected no match")
	}
}
