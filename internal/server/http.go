package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// ShutdownTimeout bounds graceful shutdown once the run context is done.
const ShutdownTimeout = 5 * time.Second

// HealthHandler answers GET /healthz.
type HealthHandler struct{}

func (HealthHandler) Routes() []string { return []string{"/healthz"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRelayRouter mounts the relay and health handlers behind the logging and recovery middleware.
func NewRelayRouter(relay *RelayHandler, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestLogger(logger), Recoverer(logger))
	router.Handler(HealthHandler{})
	router.Handler(relay)
	return router
}

// Server runs an [http.Server] until its context is canceled.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// NewServer creates a server for handler listening on addr.
func NewServer(addr string, handler http.Handler, logger *log.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run listens and serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.Run] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Infof("relay listening at %v", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
		return err
	}
	s.logger.Info("relay stopped")
	return nil
}
