package monitor

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
)

// Server exposes Hub over a single websocket endpoint.
type Server struct {
	addr string
	hub  *Hub
	http *http.Server
}

// NewServer builds a Server bound to addr, broadcasting through hub.
func NewServer(addr string, hub *Hub) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)

	return &Server{
		addr: addr,
		hub:  hub,
		http: &http.Server{Addr: addr, Handler: mux},
	}
}

// Start runs the server until Shutdown is called or ListenAndServe fails.
func (s *Server) Start() error {
	log.Info("monitor server listening", "addr", s.addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
