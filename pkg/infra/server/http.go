package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/kart-io/logger"

	serveropts "github.com/kart-io/onboarding-assistant/pkg/options/server"
)

// HTTPServer serves an http.Handler, typically a gin engine.
type HTTPServer struct {
	srv *http.Server

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

var _ Runnable = (*HTTPServer)(nil)

// NewHTTPServer creates an HTTP server for handler.
func NewHTTPServer(opts *serveropts.Options, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
}

// Name implements Runnable.
func (s *HTTPServer) Name() string {
	return "http"
}

// Start listens on the configured address and serves in the background.
func (s *HTTPServer) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server stopped unexpectedly", "addr", ln.Addr().String(), "error", err.Error())
		}
	}()
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	err := s.srv.Shutdown(ctx)
	select {
	case <-done:
	case <-ctx.Done():
	}
	return err
}

// Addr returns the bound address, or the configured one before Start.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.srv.Addr
}
