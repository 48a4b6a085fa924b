package controlplane

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/master"
)

// Server owns the control-plane's *http.Server, grounded on the pack's
// server-wrapper shape (setup routes once, expose Start/Shutdown).
type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, c *master.Coordinator) *Server {
	handler := NewHandler(c)
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler.Router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control plane server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("control plane server shutdown failed: %w", err)
	}
	return nil
}
