package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform/platformtest"
)

func TestWebsocketRoundTrip(t *testing.T) {
	fake := platformtest.New()
	ws := NewWebsocketServer(NewDispatcher(automation.New(fake), nil, 0))
	srv := httptest.NewServer(ws.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	requests := []struct {
		req  *Request
		data string
		kind ErrorKind
	}{
		{req: mustRequest(t, CommandPing), data: `"pong"`},
		{req: mustRequest(t, CommandSetClipboardText, "from ws"), data: `true`},
		{req: mustRequest(t, CommandSendChar, 5, ""), kind: KindArgument},
	}

	for _, tt := range requests {
		if err := conn.WriteJSON(tt.req); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
		var resp Response
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if tt.kind != "" {
			if resp.Status != StatusError || resp.ErrorKind != tt.kind {
				t.Fatalf("%s => %+v, want %s error", tt.req.Command, resp, tt.kind)
			}
			continue
		}
		if resp.Status != StatusOK || string(resp.Data) != tt.data {
			t.Fatalf("%s => %+v, want %s", tt.req.Command, resp, tt.data)
		}
	}

	if fake.Clipboard != "from ws" {
		t.Fatalf("clipboard = %q", fake.Clipboard)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ws.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func mustRequest(t *testing.T, command string, args ...interface{}) *Request {
	t.Helper()
	req, err := NewRequest(command, args...)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestWebsocketRefusesAfterStop(t *testing.T) {
	ws := NewWebsocketServer(NewDispatcher(automation.New(platformtest.New()), nil, 0))
	srv := httptest.NewServer(ws.Handler())
	defer srv.Close()

	if err := ws.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail after Stop")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("response = %+v, want 503", resp)
	}
}
