package bridge

import (
	"bufio"
	"context"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// maxRequestBytes bounds a single request line.
const maxRequestBytes = 1 << 20

// Server answers one request per connection on a unix socket.
type Server struct {
	socketPath string
	timeout    time.Duration
	dispatcher *Dispatcher

	listener     net.Listener
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server for socketPath. A stale socket file is removed.
func NewServer(socketPath string, dispatcher *Dispatcher, timeout time.Duration) *Server {
	os.Remove(socketPath)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		timeout:    timeout,
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create bridge socket %s", s.socketPath)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return errors.Wrap(err, "failed to set socket permissions")
	}

	log.Printf("bridge listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("bridge accept error: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if s.timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.timeout))
	}

	reader := bufio.NewReader(io.LimitReader(conn, maxRequestBytes))
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("bridge read error: %v", err)
		return
	}

	resp := s.dispatcher.HandleLine(s.ctx, "socket", data)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("failed to marshal response: %v", err)
		return
	}
	respData = append(respData, '\n')

	if s.timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.timeout))
	}
	if _, err := conn.Write(respData); err != nil {
		log.Printf("failed to send response: %v", err)
	}
}

// Stop closes the listener, cancels in-flight typing, waits for open
// connections, and removes the socket file.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.cancel()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
	return err
}
