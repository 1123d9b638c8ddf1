// Package api exposes the chat service over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/albadia/villachat/internal/chat"
	"github.com/albadia/villachat/internal/evidence"
	"github.com/albadia/villachat/internal/metrics"
)

const maxRequestBodySize = 1 << 20 // 1MB

// apiVersion is reported by the root endpoint.
const apiVersion = "1.0.0"

// ChatService processes one conversation turn.
type ChatService interface {
	ProcessMessage(ctx context.Context, req *chat.Request) (*chat.Result, error)
}

// EvidenceCounter reports index readiness for health checks.
type EvidenceCounter interface {
	Count(ctx context.Context, class evidence.Class) (int, error)
}

// Sweeper removes expired sessions on demand.
type Sweeper interface {
	SweepExpired() int
}

// Deps holds the handler dependencies.
type Deps struct {
	Chat       ChatService
	Evidence   EvidenceCounter
	Sessions   Sweeper
	AdminToken string
}

// NewHandler builds the chi router with all HTTP endpoints.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth(deps))
	r.Post("/chat", handleChat(deps))
	r.Route("/admin", func(r chi.Router) {
		r.Use(BearerAuth(deps.AdminToken))
		r.Post("/cleanup-sessions", handleCleanupSessions(deps))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "Real Estate RAG Chatbot API",
		"version": apiVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"chat":    "/chat",
			"health":  "/health",
			"metrics": "/metrics",
		},
	})
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := deps.Evidence.Count(r.Context(), evidence.ClassText)
		loaded := err == nil && n > 0
		writeJSON(w, http.StatusOK, map[string]any{
			"status":             "healthy",
			"vectorstore_loaded": loaded,
		})
	}
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chat.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		result, err := deps.Chat.ProcessMessage(r.Context(), &req)
		switch {
		case errors.Is(err, chat.ErrInvalidRequest):
			metrics.TurnsTotal.WithLabelValues("error").Inc()
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		case errors.Is(err, evidence.ErrUnavailable):
			metrics.TurnsTotal.WithLabelValues("error").Inc()
			httpError(w, http.StatusServiceUnavailable, "api_error", "Service not ready. Please ensure data ingestion has been completed.")
			return
		case err != nil:
			metrics.TurnsTotal.WithLabelValues("error").Inc()
			httpError(w, http.StatusInternalServerError, "api_error", "Failed to process your message. Please try again.")
			return
		}

		outcome := "ok"
		if result.Fallback {
			outcome = "fallback"
		}
		metrics.TurnsTotal.WithLabelValues(outcome).Inc()
		metrics.LeadIntentTotal.WithLabelValues(string(result.LeadSignals.Intent)).Inc()
		writeJSON(w, http.StatusOK, result)
	}
}

func handleCleanupSessions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := deps.Sessions.SweepExpired()
		writeJSON(w, http.StatusOK, map[string]any{
			"cleaned_up": count,
			"message":    fmt.Sprintf("Cleaned up %d expired sessions", count),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
