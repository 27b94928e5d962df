package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/shiftdl/shiftdl/common"
	"github.com/shiftdl/shiftdl/pkg/logger"
)

// Server accepts framed JSON requests from CLI clients over a Unix socket
// (falling back to TCP) and dispatches them to registered handlers. It
// also hosts the optional HTTP JSON-RPC bridge.
type Server struct {
	log      logger.Logger
	pool     *Pool
	web      *WebServer
	handler  map[common.Method]HandlerFunc
	port     int
	listener net.Listener
	mu       sync.Mutex

	// onDisconnect is invoked with the connection id when a client goes
	// away, so its entries can be reaped.
	onDisconnect func(ownerId string)

	// onActivity is invoked on every handled request; the daemon runner
	// uses it to defer the inactivity shutdown.
	onActivity func()
}

// NewServer creates a Server listening on the Unix socket, with TCP on
// port as fallback. rpcCfg may be nil to disable the HTTP bridge.
func NewServer(l logger.Logger, port int, rpcCfg *RPCConfig, notifier *RPCNotifier) *Server {
	pool := NewPool(l)
	s := &Server{
		log:     l,
		pool:    pool,
		handler: make(map[common.Method]HandlerFunc),
		port:    port,
	}
	if rpcCfg != nil && rpcCfg.Secret != "" {
		s.web = NewWebServer(l, rpcCfg, notifier, port+1)
	}
	return s
}

// Pool returns the watcher pool, for broadcasting schedule changes.
func (s *Server) Pool() *Pool { return s.pool }

// RegisterHandler associates a handler with a request method.
func (s *Server) RegisterHandler(method common.Method, handler HandlerFunc) {
	s.handler[method] = handler
}

// OnDisconnect sets the client disconnect callback.
func (s *Server) OnDisconnect(fn func(ownerId string)) {
	s.onDisconnect = fn
}

// OnActivity sets the request activity callback.
func (s *Server) OnActivity(fn func()) {
	s.onActivity = fn
}

// RegisterRPCHandlers installs the entry.* JSON-RPC methods on the HTTP
// bridge. No-op when the bridge is disabled.
func (s *Server) RegisterRPCHandlers(rs *RPCServer) {
	if s.web != nil {
		s.web.SetRPC(rs)
	}
}

func (s *Server) createListener() (net.Listener, error) {
	socketPath := socketPath()
	_ = os.Remove(socketPath)
	l, err := net.ListenUnix("unix", &net.UnixAddr{
		Name: socketPath,
		Net:  "unix",
	})
	if err != nil {
		s.log.Warning("Unix socket unavailable: %v", err)
		s.log.Warning("Falling back to tcp socket")
		tcpListener, tcpErr := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
		if tcpErr != nil {
			return nil, fmt.Errorf("error listening: %s", tcpErr.Error())
		}
		return tcpListener, nil
	}
	_ = os.Chmod(socketPath, 0700)
	return l, nil
}

// Start begins accepting connections and blocks until ctx is cancelled.
// Each connection is served by its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	if s.web != nil {
		go func() {
			if err := s.web.Start(); err != nil {
				s.log.Error("RPC bridge stopped: %v", err)
			}
		}()
	}

	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			s.log.Error("Error accepting: %v", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// Shutdown closes the listener, stops the HTTP bridge and removes the
// socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Error("Error closing listener: %v", err)
		}
		s.listener = nil
	}

	if s.web != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.web.Shutdown(shutdownCtx); err != nil {
			s.log.Error("Error shutting down RPC bridge: %v", err)
		}
	}

	socketPath := socketPath()
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		s.log.Error("Error removing socket file: %v", err)
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	sconn := NewSyncConn(conn)
	// connecting counts as client activity, before any frame arrives
	if s.onActivity != nil {
		s.onActivity()
	}
	defer func() {
		s.pool.RemoveWatcher(sconn.Id)
		if s.onDisconnect != nil {
			s.onDisconnect(sconn.Id)
		}
		_ = conn.Close()
	}()
	for {
		buf, err := sconn.Read()
		if err != nil {
			if err != io.EOF {
				s.log.Error("Error reading: %v", err)
			}
			return
		}
		if s.onActivity != nil {
			s.onActivity()
		}
		if err := s.handlerWrapper(sconn, buf); err != nil {
			s.log.Error("Error handling: %v", err)
			return
		}
	}
}

func (s *Server) handlerWrapper(sconn *SyncConn, b []byte) error {
	req, err := ParseRequest(b)
	if err != nil {
		return fmt.Errorf("error parsing request: %s", err.Error())
	}
	rHandler, ok := s.handler[req.Method]
	if !ok {
		if err := sconn.Write(CreateError("unknown method: " + string(req.Method))); err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	utype, msg, err := rHandler(sconn, s.pool, req.Message)
	if err != nil {
		if err := sconn.Write(InitError(err)); err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	if err := sconn.Write(MakeResult(utype, msg)); err != nil {
		return fmt.Errorf("error writing response: %s", err.Error())
	}
	return nil
}
