// internal/app/features/users/stats.go
package users

import (
	"net/http"

	memberstore "github.com/dalemusser/panelhub/internal/app/store/members"
	"github.com/dalemusser/panelhub/internal/app/store/queries/engagementqueries"
	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/metrics"
	"github.com/dalemusser/panelhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeStats handles GET /api/users/stats: engagement statistics per
// demographic segment across every member.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user stats")
	defer cancel()

	stats, err := engagementqueries.Aggregate(ctx, h.DB.Collection(memberstore.Collection), h.Now())
	metrics.Observe(metrics.OpStats, err)
	if err != nil {
		h.Errs.Write(w, r, "user stats", err)
		return
	}

	h.Log.Info("user statistics fetched", zap.Int("segments", len(stats)))
	apierr.JSON(w, http.StatusOK, stats)
}
