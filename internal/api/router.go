// Package api wires the HTTP surface: the websocket endpoint, the admin
// auth endpoint, health, and prometheus metrics.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/gateway"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, gw *gateway.Gateway, h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(logger))
	r.Use(chimw.Recoverer)

	// Browsers connect from wherever the front end is served.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.Health)
	r.Post("/admin/auth", h.AdminAuth)

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		gw.ServeWS(w, req)
	})

	return r
}
