package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/equiseed/equiseed/internal/platform/httpx"
)

// RoleLister enumerates defined roles.
type RoleLister interface {
	ListRoles(ctx context.Context) ([]Role, error)
}

// Handler exposes the role directory on the admin surface.
type Handler struct {
	logger *slog.Logger
	roles  RoleLister
	mw     Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, roles RoleLister, mw Middleware) *Handler {
	return &Handler{logger: logger, roles: roles, mw: mw}
}

// MountAdminRoutes registers the admin role directory.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(PermFundingReview))
		r.Get("/roles", h.listRoles)
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": roles})
}
