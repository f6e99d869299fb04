package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/middleware"
)

// NewRouter wires every endpoint. ws may be nil, which leaves /ws unrouted.
func NewRouter(h *Handler, ws *WebSocketHandler, corsOrigins []string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Routes
	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	if ws != nil {
		r.Get("/ws", ws.HandleWebSocket)
	}

	// API v1; the timeout does not apply to /ws, which is long-lived
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		r.Get("/schedule", h.GetSchedule)
		r.Get("/context", h.GetContext)
		r.Get("/leagues", h.GetLeagues)
	})

	return r
}
