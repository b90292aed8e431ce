package bridge

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform/platformtest"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func startTestServer(t *testing.T, fake *platformtest.Fake) *Client {
	t.Helper()
	return startServerWith(t, NewDispatcher(automation.New(fake), nil, 0), time.Second)
}

func startServerWith(t *testing.T, d *Dispatcher, timeout time.Duration) *Client {
	t.Helper()
	dir, err := os.MkdirTemp("", "db")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "b.sock")
	srv := NewServer(socket, d, timeout)
	if err := srv.Start(); err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return NewClient(socket, timeout)
}

func TestServerClientRoundTrip(t *testing.T) {
	fake := platformtest.New(platformtest.Window{Handle: platform.HandleFromRaw(77), Title: "Target"})
	client := startTestServer(t, fake)

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	var windows []automation.WindowEntry
	if err := client.CallInto(&windows, CommandEnumerateWindows); err != nil {
		t.Fatalf("enumerateWindows: %v", err)
	}
	if len(windows) != 1 || windows[0].Handle != platform.HandleFromRaw(77) || windows[0].Title != "Target" {
		t.Fatalf("windows = %+v", windows)
	}

	var code int
	if err := client.CallInto(&code, CommandSendChar, windows[0].Handle, "z"); err != nil {
		t.Fatalf("sendChar: %v", err)
	}
	if code != 0 {
		t.Fatalf("sendChar code = %d", code)
	}

	sent := fake.Sent()
	if len(sent) != 1 || sent[0].Handle != platform.HandleFromRaw(77) || sent[0].WParam != 'z' {
		t.Fatalf("sent = %+v", sent)
	}
}

func TestClientWaitsForTypingPastTimeout(t *testing.T) {
	fake := platformtest.New()
	client := startServerWith(t, NewDispatcher(automation.New(fake), nil, 10*time.Millisecond), 200*time.Millisecond)

	text := strings.Repeat("a", 40)
	var ok bool
	if err := client.CallInto(&ok, CommandSendString, 1, text); err != nil {
		t.Fatalf("sendString: %v", err)
	}
	if !ok {
		t.Fatal("sendString reported failure")
	}
	if n := len(fake.Sent()); n != len(text) {
		t.Fatalf("sent %d messages, want %d", n, len(text))
	}

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestServerClientRemoteError(t *testing.T) {
	client := startTestServer(t, platformtest.New())

	_, err := client.Call(CommandSendKeystrokes, 1, 2)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Kind != KindArgument || remote.Message != "unknown keystroke type" {
		t.Fatalf("unexpected remote error %+v", remote)
	}
}

func TestServerStopRemovesSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "db")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	socket := filepath.Join(dir, "b.sock")
	srv := NewServer(socket, NewDispatcher(automation.New(platformtest.New()), nil, 0), time.Second)
	if err := srv.Start(); err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := os.Stat(socket); !os.IsNotExist(err) {
		t.Fatalf("socket still present: %v", err)
	}
}

func TestClientNoServer(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "missing.sock"), 100*time.Millisecond)
	if err := client.Ping(); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestResponseJSONShape(t *testing.T) {
	data, err := NewErrorResponse(KindResource, "failed to open clipboard").Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["status"] != "ERROR" || m["error_kind"] != "resource" || m["error"] != "failed to open clipboard" {
		t.Fatalf("unexpected shape %s", data)
	}
	if _, ok := m["data"]; ok {
		t.Fatalf("error response should omit data: %s", data)
	}
}
