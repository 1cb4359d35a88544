// internal/app/features/users/engagement.go
package users

import (
	"errors"
	"net/http"

	memberstore "github.com/dalemusser/panelhub/internal/app/store/members"
	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/metrics"
	"github.com/dalemusser/panelhub/internal/app/system/timeouts"
	"github.com/dalemusser/panelhub/internal/domain/engagement"
	"github.com/go-chi/chi/v5"
)

type engagementResponse struct {
	ID string `json:"_id"`
	engagement.Breakdown
}

// ServeEngagement handles GET /api/users/{id}/engagement: the weights,
// score and tier of one member as of now. Nothing is written back.
func (h *Handler) ServeEngagement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user engagement")
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if errors.Is(err, memberstore.ErrNotFound) {
		metrics.Observe(metrics.OpGet, nil)
		h.Errs.Write(w, r, "user engagement", apierr.NotFound("User not found"))
		return
	}
	metrics.Observe(metrics.OpGet, err)
	if err != nil {
		h.Errs.Write(w, r, "user engagement", err)
		return
	}

	apierr.JSON(w, http.StatusOK, engagementResponse{
		ID:        m.ID.Hex(),
		Breakdown: engagement.Evaluate(m, h.Now()),
	})
}
