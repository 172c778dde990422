// Package web serves the stats report over HTTP on the loopback interface.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/procuptime/procuptime/internal/logging"
	"github.com/sirupsen/logrus"
)

// DefaultAddr is used when no listen address is given.
const DefaultAddr = "127.0.0.1:8777"

type Server struct {
	handler *Handler
	server  *http.Server
	logger  *logrus.Entry
}

func NewServer(statePath, addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	handler := NewHandler(statePath)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  httpServer,
		logger:  logging.NewLogger("web"),
	}
}

// Serve listens and serves until ctx is done, then shuts down gracefully.
// ready, if set, receives the bound address once the listener is open.
func (s *Server) Serve(ctx context.Context, ready func(addr string)) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.logger.Infof("Serving stats on http://%s", ln.Addr())
	if ready != nil {
		ready(ln.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Shutting down web server...")
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
