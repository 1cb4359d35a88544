// internal/app/features/users/list.go
package users

import (
	"net/http"

	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/filters"
	"github.com/dalemusser/panelhub/internal/app/system/inputval"
	"github.com/dalemusser/panelhub/internal/app/system/metrics"
	"github.com/dalemusser/panelhub/internal/app/system/paging"
	"github.com/dalemusser/panelhub/internal/app/system/timeouts"
	"github.com/dalemusser/panelhub/internal/domain/models"
	"go.uber.org/zap"
)

type pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

type listResponse struct {
	Users      []models.Member `json:"users"`
	Pagination pagination      `json:"pagination"`
}

// ServeList handles GET /api/users.
//
// Query parameters are validated as a whole; any bad parameter rejects the
// request with 400 before storage is touched.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, errs := inputval.ParseListQuery(r)
	if errs.Any() {
		h.Errs.Write(w, r, "list users", apierr.Invalid(errs))
		return
	}

	tree := filters.Compile(q)
	p := paging.Resolve(q.Page, q.Limit, q.SortBy, q.Order)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	users, total, err := h.Members.List(ctx, tree, p)
	metrics.Observe(metrics.OpList, err)
	if err != nil {
		h.Errs.Write(w, r, "list users", err)
		return
	}

	h.Log.Debug("users listed",
		zap.Int64("total", total),
		zap.Int("page", p.Page),
		zap.Int("limit", p.Limit),
		zap.Int("returned", len(users)))

	apierr.JSON(w, http.StatusOK, listResponse{
		Users: users,
		Pagination: pagination{
			Total: total,
			Page:  p.Page,
			Limit: p.Limit,
			Pages: paging.Pages(total, p.Limit),
		},
	})
}
