package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Server wraps the API routes in an http.Server with graceful shutdown.
type Server struct {
	http *http.Server
}

func NewServer(opts Options) *Server {
	return &Server{
		http: &http.Server{Handler: RegisterRoutes(opts)},
	}
}

// Start begins listening on the given port. It blocks until the server
// stops; a graceful Shutdown surfaces as http.ErrServerClosed.
func (s *Server) Start(port int) error {
	s.http.Addr = fmt.Sprintf(":%d", port)
	log.Printf("launchpad API listening on http://localhost%s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight
// requests. Live runs are not killed; they outlive the API.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
