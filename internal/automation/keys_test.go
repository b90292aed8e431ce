package automation

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform/platformtest"
)

type sentKey struct {
	msg uint32
	vk  uintptr
}

func keysOf(msgs []platformtest.Message) []sentKey {
	out := make([]sentKey, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, sentKey{msg: m.Msg, vk: m.WParam})
	}
	return out
}

func equalKeys(a, b []sentKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSendKeystrokesSequences(t *testing.T) {
	tests := []struct {
		name string
		kind KeystrokeKind
		want []sentKey
	}{
		{
			name: "enter",
			kind: KeystrokeEnter,
			want: []sentKey{
				{platform.MsgKeyDown, 0x0D},
				{platform.MsgKeyUp, 0x0D},
			},
		},
		{
			name: "ctrl+v",
			kind: KeystrokeCtrlV,
			want: []sentKey{
				{platform.MsgKeyDown, 0x11},
				{platform.MsgKeyDown, 0x56},
				{platform.MsgKeyUp, 0x56},
				{platform.MsgKeyUp, 0x11},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := platformtest.New()
			ok, err := New(fake).SendKeystrokes(handle(5), tt.kind)
			if err != nil || !ok {
				t.Fatalf("SendKeystrokes = %v, %v", ok, err)
			}
			sent := fake.Sent()
			if got := keysOf(sent); !equalKeys(got, tt.want) {
				t.Fatalf("sequence = %v, want %v", got, tt.want)
			}
			for _, m := range sent {
				if m.Posted || m.Handle != handle(5) {
					t.Fatalf("expected synchronous send to handle 5, got %+v", m)
				}
			}
		})
	}
}

func TestSendKeystrokesUnknownKind(t *testing.T) {
	for _, kind := range []KeystrokeKind{2, -1, 99} {
		fake := platformtest.New()
		ok, err := New(fake).SendKeystrokes(handle(5), kind)
		if ok {
			t.Fatalf("kind %d: expected false", kind)
		}
		if !errors.Is(err, ErrUnknownKeystroke) || !IsArgumentError(err) {
			t.Fatalf("kind %d: expected unknown keystroke argument error, got %v", kind, err)
		}
		if n := len(fake.Sent()); n != 0 {
			t.Fatalf("kind %d: sent %d messages, want 0", kind, n)
		}
	}
}

func TestSendPasteAlwaysTrue(t *testing.T) {
	fake := platformtest.New()
	fake.SendReturn = 0

	if !New(fake).SendPaste(handle(8)) {
		t.Fatal("SendPaste must report true regardless of delivery")
	}
	if n := len(fake.Sent()); n != 4 {
		t.Fatalf("sent %d messages, want 4", n)
	}
}

func TestCharAndKeyResultCodes(t *testing.T) {
	ops := []struct {
		name string
		run  func(f *Facade) ResultCode
	}{
		{"SendChar", func(f *Facade) ResultCode { c, _ := f.SendChar(handle(1), "a"); return c }},
		{"PostChar", func(f *Facade) ResultCode { c, _ := f.PostChar(handle(1), "a"); return c }},
		{"SendKeyDown", func(f *Facade) ResultCode { return f.SendKeyDown(handle(1), 0x41) }},
		{"SendKeyUp", func(f *Facade) ResultCode { return f.SendKeyUp(handle(1), 0x41) }},
	}

	for _, op := range ops {
		t.Run(op.name+"/delivered", func(t *testing.T) {
			fake := platformtest.New()
			got := op.run(New(fake))
			if got != CodeOK {
				t.Fatalf("got %d, want 0", got)
			}
			if got != 0 {
				t.Fatalf("got %d, want 0", got)
			}
		})
		t.Run(op.name+"/failed", func(t *testing.T) {
			fake := platformtest.New()
			fake.SendReturn = 0
			fake.PostFails = true
			got := op.run(New(fake))
			if got != CodeFailed {
				t.Fatalf("got %d, want 1", got)
			}
			if got != 1 {
				t.Fatalf("got %d, want 1", got)
			}
		})
	}
}

func TestSendCharTakesFirstUnit(t *testing.T) {
	fake := platformtest.New()
	f := New(fake)

	if _, err := f.SendChar(handle(2), "hello"); err != nil {
		t.Fatalf("SendChar: %v", err)
	}
	if _, err := f.PostChar(handle(2), "😀x"); err != nil {
		t.Fatalf("PostChar: %v", err)
	}

	sent := fake.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sent))
	}
	if sent[0].Msg != platform.MsgChar || sent[0].WParam != 'h' || sent[0].Posted {
		t.Fatalf("unexpected send %+v", sent[0])
	}
	if sent[1].Msg != platform.MsgChar || sent[1].WParam != 0xD83D || !sent[1].Posted {
		t.Fatalf("expected posted high surrogate, got %+v", sent[1])
	}
}

func TestCharEmptyTextIsArgumentError(t *testing.T) {
	for _, text := range []string{"", "\x00abc", "\xff"} {
		fake := platformtest.New()
		f := New(fake)

		if _, err := f.SendChar(handle(1), text); !errors.Is(err, ErrEmptyCharacter) || !IsArgumentError(err) {
			t.Fatalf("SendChar(%q) err = %v", text, err)
		}
		if _, err := f.PostChar(handle(1), text); !errors.Is(err, ErrEmptyCharacter) {
			t.Fatalf("PostChar(%q) err = %v", text, err)
		}
		if n := len(fake.Sent()); n != 0 {
			t.Fatalf("%q: sent %d messages before failing", text, n)
		}
	}
}

func TestSendKeyDoesNotValidateCode(t *testing.T) {
	fake := platformtest.New()
	New(fake).SendKeyDown(handle(1), 0xFFFF)

	sent := fake.Sent()
	if len(sent) != 1 || sent[0].Msg != platform.MsgKeyDown || sent[0].WParam != 0xFFFF {
		t.Fatalf("unexpected messages %+v", sent)
	}
}

func TestSendEscape(t *testing.T) {
	fake := platformtest.New()
	if !New(fake).SendEscape(handle(1)) {
		t.Fatal("expected success")
	}
	want := []sentKey{{platform.MsgKeyDown, 27}, {platform.MsgKeyUp, 27}}
	if got := keysOf(fake.Sent()); !equalKeys(got, want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}

	fake = platformtest.New()
	fake.SendReturn = 0
	if New(fake).SendEscape(handle(1)) {
		t.Fatal("expected failure")
	}
	if n := len(fake.Sent()); n != 2 {
		t.Fatalf("key up must still be sent, got %d messages", n)
	}
}

func TestSendEnter(t *testing.T) {
	fake := platformtest.New()
	if !New(fake).SendEnter(handle(1)) {
		t.Fatal("expected true")
	}
	if n := len(fake.Sent()); n != 2 {
		t.Fatalf("sent %d messages, want 2", n)
	}
}

func TestCharToVirtualKey(t *testing.T) {
	tests := []struct {
		in   rune
		want uint32
	}{
		{'A', 65},
		{'Z', 90},
		{'a', 65},
		{'z', 90},
		{'0', 48},
		{'9', 57},
		{' ', 32},
		{'é', 0xE9},
	}
	for _, tt := range tests {
		if got := CharToVirtualKey(tt.in); got != tt.want {
			t.Errorf("CharToVirtualKey(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseKeystrokeKind(t *testing.T) {
	if k, ok := ParseKeystrokeKind("enter"); !ok || k != KeystrokeEnter {
		t.Fatalf("enter = %v, %v", k, ok)
	}
	if k, ok := ParseKeystrokeKind("ctrlv"); !ok || k != KeystrokeCtrlV {
		t.Fatalf("ctrlv = %v, %v", k, ok)
	}
	if _, ok := ParseKeystrokeKind("tab"); ok {
		t.Fatal("tab should not parse")
	}
}
