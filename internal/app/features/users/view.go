// internal/app/features/users/view.go
package users

import (
	"errors"
	"net/http"

	memberstore "github.com/dalemusser/panelhub/internal/app/store/members"
	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/metrics"
	"github.com/dalemusser/panelhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeGet handles GET /api/users/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get user")
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if errors.Is(err, memberstore.ErrNotFound) {
		metrics.Observe(metrics.OpGet, nil)
		h.Errs.Write(w, r, "get user", apierr.NotFound("User not found"))
		return
	}
	metrics.Observe(metrics.OpGet, err)
	if err != nil {
		h.Errs.Write(w, r, "get user", err)
		return
	}
	apierr.JSON(w, http.StatusOK, m)
}
