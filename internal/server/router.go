package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the card endpoints.
func NewRouter(h *Handler) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/health", Healthcheck())
	router.Get("/api/stats", h.Stats)
	router.Get("/api/pin", h.Pin)
	router.Get("/api/status/pat-info", h.PATInfo)

	return router
}
