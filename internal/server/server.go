package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/cuebird/cuebird/internal/container"
	"github.com/cuebird/cuebird/internal/log"
	"github.com/cuebird/cuebird/internal/tracing"
)

// Config configures the API server.
type Config struct {
	// Addr is the address to listen on, e.g. "127.0.0.1:8480".
	// Port 0 asks the OS for a free port; use Port() after NewServer.
	Addr string

	// Container is the composed capability container to expose.
	Container *container.Container

	// Tracer wraps every request in a server span. Nil disables tracing.
	Tracer trace.Tracer

	// ReadTimeout bounds reading the request. Default 30s.
	ReadTimeout time.Duration

	// WriteTimeout bounds response writes. Default 0 (unbounded, SSE).
	WriteTimeout time.Duration
}

// Server wraps the Handler with an http.Server for lifecycle management.
type Server struct {
	handler  *Handler
	server   *http.Server
	listener net.Listener
	port     int
}

// NewServer creates the API server and binds its listener.
func NewServer(cfg Config) (*Server, error) {
	handler := NewHandler(cfg.Container)

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}

	var routes http.Handler = handler.Routes()
	if cfg.Tracer != nil {
		routes = tracing.Middleware(cfg.Tracer, routes)
	}

	// Bind first so port 0 resolves to the actual port.
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	return &Server{
		handler:  handler,
		listener: listener,
		port:     port,
		server: &http.Server{
			Handler:           routes,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}, nil
}

// Start serves requests. Blocks until Stop or a listener failure.
func (s *Server) Start() error {
	log.Info(log.CatServer, "starting API server", "addr", s.listener.Addr().String())
	return s.server.Serve(s.listener)
}

// Stop gracefully shuts down the server and closes event streams.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatServer, "stopping API server")
	s.handler.Close()
	return s.server.Shutdown(ctx)
}

// Port returns the bound port, useful with Addr ":0".
func (s *Server) Port() int {
	return s.port
}
