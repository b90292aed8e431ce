//go:build linux

package platform

import "testing"

func TestCharKeysym(t *testing.T) {
	tests := []struct {
		in    rune
		sym   string
		shift bool
		ok    bool
	}{
		{'a', "a", false, true},
		{'Q', "q", true, true},
		{'7', "7", false, true},
		{' ', "space", false, true},
		{'/', "slash", false, true},
		{'é', "", false, false},
	}
	for _, tt := range tests {
		sym, shift, ok := charKeysym(tt.in)
		if sym != tt.sym || shift != tt.shift || ok != tt.ok {
			t.Errorf("charKeysym(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.in, sym, shift, ok, tt.sym, tt.shift, tt.ok)
		}
	}
}

func TestVKKeysyms(t *testing.T) {
	if got := vkKeysyms[VKReturn]; got != "Return" {
		t.Fatalf("VKReturn keysym = %q", got)
	}
	if got := vkKeysyms[VKEscape]; got != "Escape" {
		t.Fatalf("VKEscape keysym = %q", got)
	}
	if got, ok := vkAlnumKeysym(VKKeyV); !ok || got != "v" {
		t.Fatalf("vkAlnumKeysym(V) = %q, %v", got, ok)
	}
	if _, ok := vkAlnumKeysym(0x90); ok {
		t.Fatal("0x90 should not resolve")
	}
}

func TestX11BackendClipboardStaging(t *testing.T) {
	b := NewX11Backend(nil)

	if !b.OpenClipboard() {
		t.Fatal("first open should succeed")
	}
	if b.OpenClipboard() {
		t.Fatal("second open should fail while held")
	}

	mem, ok := b.GlobalAllocText([]uint16{'h', 'i', 0})
	if !ok || mem == 0 {
		t.Fatalf("GlobalAllocText = %v, %v", mem, ok)
	}
	if b.SetClipboardData(1, mem) {
		t.Fatal("non-text format should be refused")
	}
	b.GlobalFree(mem)
	if _, staged := b.staged[mem]; staged {
		t.Fatal("GlobalFree should drop the staged block")
	}

	if !b.CloseClipboard() {
		t.Fatal("close should report the clipboard was open")
	}
	if b.CloseClipboard() {
		t.Fatal("second close should report not open")
	}
}
