package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultAPIReadHeaderTimeout bounds header reads on the API server.
	// Body reads are left unbounded; uploads may legitimately take long.
	DefaultAPIReadHeaderTimeout = 10 * time.Second

	// DefaultAPIIdleTimeout is the idle timeout for API keep-alive connections.
	DefaultAPIIdleTimeout = 120 * time.Second
)

// APIServer is the externally reachable HTTP server: the REST endpoints
// plus the health probes, wrapped in logging and metrics middleware.
type APIServer struct {
	httpServer *http.Server
	health     *HealthChecker
	sc         *ServerContext
	addr       string
}

// NewAPIServer assembles the API server on top of the given server context.
func NewAPIServer(sc *ServerContext) *APIServer {
	mux := http.NewServeMux()

	api := NewAPI(sc)
	api.Register(mux)

	health := NewHealthChecker(sc)
	health.RegisterHealthEndpoints(mux)

	return &APIServer{
		health: health,
		sc:     sc,
		addr:   sc.Config().Server.Addr,
		httpServer: &http.Server{
			Addr:              sc.Config().Server.Addr,
			Handler:           WithInstrumentation(mux, sc.Logger(), sc.Metrics()),
			ReadHeaderTimeout: DefaultAPIReadHeaderTimeout,
			IdleTimeout:       DefaultAPIIdleTimeout,
		},
	}
}

// Health returns the health checker for readiness control.
func (s *APIServer) Health() *HealthChecker {
	return s.health
}

// Addr returns the configured listen address.
func (s *APIServer) Addr() string {
	return s.addr
}

// Start starts the API server in a blocking manner.
func (s *APIServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal starts the API server and closes ready once the
// listener is bound, before serving. A nil channel skips the signal.
func (s *APIServer) StartWithReadySignal(ready chan<- struct{}) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind API listener on %s: %w", s.addr, err)
	}

	s.sc.Logger().Info("starting API server", "addr", s.addr)
	if ready != nil {
		close(ready)
	}

	return s.httpServer.Serve(listener)
}

// Shutdown flips readiness, stops accepting connections, and waits for
// in-flight requests up to the context deadline.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	s.sc.Logger().Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
