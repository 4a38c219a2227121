package http

import (
	"net/http"

	"github.com/atinyakov/GophShare/internal/middleware"
	"github.com/atinyakov/GophShare/internal/share"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the viewer host's HTTP handler.
//
// Routes:
//
//	GET /        → redirect to /secret
//	GET /secret  → viewerHandler.Show (no-store, no-referrer, strict CSP)
//	GET /health  → healthHandler.Health
//
// Middleware chain (applied in order):
//  1. RequestID
//  2. Recoverer
//  3. WithRequestLogging(logger), which never logs the query string
//  4. GetHead, so HEAD requests reach the GET handlers
func NewRouter(
	viewerHandler *ViewerHandler,
	healthHandler *HealthHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.GetHead)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, share.ViewerPath, http.StatusFound)
	})

	r.With(middleware.NoStore).Get(share.ViewerPath, viewerHandler.Show)
	r.Get("/health", healthHandler.Health)

	return r
}
