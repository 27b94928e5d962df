package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"

	"github.com/shiftdl/shiftdl/pkg/logger"
)

// WebServer hosts the JSON-RPC endpoints: POST requests at /jsonrpc and a
// WebSocket upgrade at /jsonrpc/ws. WebSocket sessions additionally
// receive entry.stateChanged pushes via the notifier.
type WebServer struct {
	port     int
	log      logger.Logger
	cfg      *RPCConfig
	notifier *RPCNotifier
	rpc      *RPCServer
	server   *http.Server
	mu       sync.Mutex
}

func NewWebServer(l logger.Logger, cfg *RPCConfig, notifier *RPCNotifier, port int) *WebServer {
	return &WebServer{
		port:     port,
		log:      l,
		cfg:      cfg,
		notifier: notifier,
	}
}

// SetRPC installs the method handlers. Must be called before Start.
func (s *WebServer) SetRPC(rs *RPCServer) {
	s.rpc = rs
}

func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("WebSocket accept failed: %v", err)
		return
	}

	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.rpc.methods, nil)
	srv.Start(ch)

	if s.notifier != nil {
		s.notifier.Register(srv)
		defer s.notifier.Unregister(srv)
	}

	if err := srv.Wait(); err != nil {
		s.log.Warning("WebSocket session ended: %v", err)
	}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(s.cfg.Secret, s.rpc.bridge))
	mux.Handle("/jsonrpc/ws", requireToken(s.cfg.Secret, http.HandlerFunc(s.handleWS)))
	return mux
}

func (s *WebServer) addr() string {
	return fmt.Sprintf("127.0.0.1:%d", s.port)
}

func (s *WebServer) Start() error {
	if s.rpc == nil {
		return fmt.Errorf("rpc methods not installed")
	}
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	if s.rpc != nil {
		s.rpc.Close()
	}
	return s.server.Shutdown(ctx)
}
