// Package httptransport assembles the HTTP surface: public token
// endpoints, the programmer redirect page, operator auth, and the
// authenticated admin API.
package httptransport

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accesshandler "rfdist/internal/access/handler"
	disthandler "rfdist/internal/distribution/handler"
	ophandler "rfdist/internal/operator/handler"
	"rfdist/internal/platform/middleware"
	proghandler "rfdist/internal/program/handler"
	userhandler "rfdist/internal/user/handler"
	"rfdist/pkg/platform/httputil"
	"rfdist/pkg/platform/middleware/requesttime"
	"rfdist/pkg/platform/sentinel"
)

// Deps carries everything the router mounts.
type Deps struct {
	Access        *accesshandler.Handler
	Distributions *disthandler.Handler
	Programs      *proghandler.Handler
	Users         *userhandler.Handler
	Operators     *ophandler.Handler
	Redirect      *Redirect
	Auth          func(http.Handler) http.Handler

	// Health reports backing-store availability; nil means no backing
	// stores to probe. A sentinel.ErrUnavailable result turns /healthz
	// into a 503.
	Health func(ctx context.Context) error
}

// NewRouter wires all endpoints. Token-bearing routes stay public; the
// admin API sits behind operator JWT auth.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	deps.Operators.Register(r)
	deps.Access.Register(r)

	if deps.Redirect != nil {
		r.Get("/program/{token}", deps.Redirect.HandleProgramPage)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(deps.Auth)
		deps.Distributions.Register(r)
		deps.Programs.Register(r)
		deps.Users.Register(r)
	})

	return r
}

func handleHealth(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, sentinel.ErrUnavailable) {
					status = http.StatusServiceUnavailable
				}
				httputil.WriteJSON(w, status, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
