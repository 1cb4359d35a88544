// internal/app/features/users/bulkadd.go
package users

import (
	"net/http"

	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/inputval"
	"github.com/dalemusser/panelhub/internal/app/system/metrics"
	"github.com/dalemusser/panelhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// maxBulkBody bounds the JSON body of a bulk assignment.
const maxBulkBody = 1 << 20

type bulkAddResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// HandleBulkAdd handles POST /api/users/bulk-add.
//
// Body: {"users": ["<id>", ...] or [{"_id": "<id>"}, ...], "manufacturerId": "<id>"}.
// Responds with the number of members whose manufacturer actually changed.
func (h *Handler) HandleBulkAdd(w http.ResponseWriter, r *http.Request) {
	req, errs := inputval.ParseBulkAssign(http.MaxBytesReader(w, r.Body, maxBulkBody))
	if errs.Any() {
		h.Errs.Write(w, r, "bulk add users", apierr.Invalid(errs))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "bulk add users")
	defer cancel()

	n, err := h.Members.AssignManufacturer(ctx, req.UserIDs, req.ManufacturerID)
	metrics.Observe(metrics.OpAssign, err)
	if err != nil {
		h.Log.Error("bulk add users failed",
			zap.String("manufacturerId", req.ManufacturerID),
			zap.Int("userCount", len(req.UserIDs)),
			zap.Error(err))
		h.Errs.Write(w, r, "bulk add users", err)
		return
	}
	metrics.MembersAssigned.Add(float64(n))

	h.Log.Info("users added to manufacturer",
		zap.String("manufacturerId", req.ManufacturerID),
		zap.Int("userCount", len(req.UserIDs)),
		zap.Int64("modifiedCount", n))

	apierr.JSON(w, http.StatusOK, bulkAddResponse{ModifiedCount: n})
}
