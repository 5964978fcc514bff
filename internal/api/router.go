// Package api assembles the HTTP server routes.
package api

import (
	"log/slog"
	"net/http"

	"github.com/allthepins/identity-adapter/internal/api/handlers"
	"github.com/allthepins/identity-adapter/internal/api/middleware"
	"github.com/allthepins/identity-adapter/internal/api/response"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the auth endpoints and the middleware chain.
func NewRouter(authHandler *handlers.AuthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := response.JSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
			logger.Error("failed to write response", "error", err)
		}
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/forgot-password", authHandler.ForgotPassword)
	})

	return r
}
