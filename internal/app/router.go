package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equiseed/equiseed/internal/auth"
	"github.com/equiseed/equiseed/internal/funding"
	"github.com/equiseed/equiseed/internal/observability"
	"github.com/equiseed/equiseed/internal/rbac"
	"github.com/equiseed/equiseed/internal/shared"
	"github.com/equiseed/equiseed/internal/users"
	"github.com/equiseed/equiseed/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	FundingHandler *funding.Handler
	UsersHandler   *users.Handler
	RBACHandler    *rbac.Handler
	JobHandler     *jobs.Handler
	Pool           *pgxpool.Pool
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with platform defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.FundingHandler != nil {
		r.Route("/funding", params.FundingHandler.MountRoutes)
		r.Route("/admin/funding", params.FundingHandler.MountAdminRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/me", params.UsersHandler.MountRoutes)
	}
	r.Route("/admin", func(r chi.Router) {
		if params.UsersHandler != nil {
			params.UsersHandler.MountAdminRoutes(r)
		}
		if params.RBACHandler != nil {
			params.RBACHandler.MountAdminRoutes(r)
		}
		if params.JobHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAll(rbac.PermFundingReview))
				r.Route("/jobs", params.JobHandler.MountAdminRoutes)
			})
		}
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
