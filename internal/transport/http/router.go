// Package httptransport exposes the ballot box over HTTP JSON and WebSocket.
// Handlers stay thin: they decode, delegate to a service and encode.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/platform/metrics"
	"ballotbox/internal/platform/middleware"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the root router with the shared middleware chain.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, corsOrigin string, registrars ...Registrar) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigin))
	r.Use(middleware.LatencyMiddleware(m))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{Error: "method_not_allowed"})
	})

	for _, reg := range registrars {
		reg.Register(r)
	}
	return r
}
