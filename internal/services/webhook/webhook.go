// Package webhook runs a minimal HTTP receiver for signing notifications.
// Incoming messages are scanned with the extraction rules and the candidates
// are returned to the caller. The receiver is stateless.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/inkflow/signbridge/internal/extract"
)

const shutdownTimeout = 5 * time.Second

// notifyRequest is the POST /notify payload.
type notifyRequest struct {
	Message string `json:"message"`
}

// notifyResponse reports what the extraction rules found in the message.
type notifyResponse struct {
	EnvelopeIDs []string `json:"envelope_ids"`
	AccessCodes []string `json:"access_codes"`
}

// Server is the notification receiver.
type Server struct {
	addr       string
	httpServer *http.Server
}

// New builds a receiver bound to addr.
func New(addr string) *Server {
	s := &Server{addr: addr}

	mux := http.NewServeMux()
	mux.HandleFunc("/notify", s.handleNotify)
	mux.HandleFunc("/health", s.handleHealth)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	log.Printf("Starting webhook server on %s", s.addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down webhook server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown webhook server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	candidates := extract.Extract(req.Message)
	response := notifyResponse{
		EnvelopeIDs: candidates.EnvelopeIDs,
		AccessCodes: candidates.AccessCodes,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to write notify response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Printf("Failed to write health response: %v", err)
	}
}
