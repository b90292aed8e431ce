package bridge

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	wsReadLimit    = 1 << 20
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
)

// WebsocketServer serves the bridge protocol over websocket text frames at
// /ws. Each frame carries one Request and is answered by one Response.
type WebsocketServer struct {
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewWebsocketServer creates a websocket transport. Only same-host origins
// are accepted.
func NewWebsocketServer(dispatcher *Dispatcher) *WebsocketServer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &WebsocketServer{
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	return s
}

// Handler returns the HTTP handler for mounting elsewhere.
func (s *WebsocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start listens on addr and serves in the background.
func (s *WebsocketServer) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("bridge websocket listening on ws://%s/ws", listener.Addr())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("websocket server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *WebsocketServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts down the HTTP server and waits for open connections.
func (s *WebsocketServer) Stop(ctx context.Context) error {
	s.cancel()
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.wg.Wait()
	return err
}

func (s *WebsocketServer) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wg.Add(1)
	defer s.wg.Done()
	if s.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade: %v", err)
		return
	}

	var writeMu sync.Mutex
	done := make(chan struct{})

	c.SetReadLimit(wsReadLimit)
	if err := c.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		log.Printf("SetReadDeadline error: %v", err)
	}
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-s.ctx.Done():
				writeMu.Lock()
				c.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(wsWriteWait))
				writeMu.Unlock()
				c.Close()
				return
			case <-ticker.C:
				writeMu.Lock()
				err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	defer func() {
		close(done)
		c.Close()
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read: %v", err)
			}
			return
		}
		if err := c.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
			return
		}

		resp := s.dispatcher.HandleLine(s.ctx, "websocket", data)

		writeMu.Lock()
		c.SetWriteDeadline(time.Now().Add(wsWriteWait))
		err = c.WriteJSON(resp)
		writeMu.Unlock()
		if err != nil {
			log.Printf("write json err: %v", err)
			return
		}
	}
}
