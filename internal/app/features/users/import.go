// internal/app/features/users/import.go
package users

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	memberstore "github.com/dalemusser/panelhub/internal/app/store/members"
	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/csvutil"
	"github.com/dalemusser/panelhub/internal/app/system/inputval"
	"github.com/dalemusser/panelhub/internal/app/system/metrics"
	"github.com/dalemusser/panelhub/internal/app/system/timeouts"
	"github.com/dalemusser/panelhub/internal/app/system/validators"
	"go.uber.org/zap"
)

type importResponse struct {
	Inserted int `json:"inserted"`
}

// HandleImport handles POST /api/users/import.
//
// The CSV comes either as the "file" part of a multipart form or as the raw
// request body (Content-Type text/csv). The whole file is checked before
// anything is written; a file with any bad row is rejected with every row
// error listed under errors.rows.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	src, closeSrc, err := csvSource(r)
	if err != nil {
		h.Errs.Write(w, r, "import users", apierr.BadRequest(err.Error()))
		return
	}
	defer closeSrc()

	opts := csvutil.DefaultParseOptions()
	if h.ImportMaxRows > 0 {
		opts.MaxRows = h.ImportMaxRows
	}
	res, err := csvutil.ParseMemberCSV(src, opts)
	if err != nil {
		h.Errs.Write(w, r, "import users", apierr.BadRequest(err.Error()))
		return
	}
	if res.HasErrors() {
		fields := inputval.Errors{}
		for _, e := range res.Errors {
			fields.Add("rows", e.String())
		}
		if res.Truncated {
			fields.Add("rows", "too many errors; remaining rows were not checked")
		}
		h.Errs.Write(w, r, "import users", apierr.Invalid(fields))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "import users")
	defer cancel()

	n, err := h.Members.InsertMany(ctx, res.Rows)
	metrics.MembersImported.Add(float64(n))
	var dup *memberstore.DuplicateError
	if errors.As(err, &dup) {
		metrics.Observe(metrics.OpImport, nil)
		h.Log.Warn("import stopped on duplicate",
			zap.String("field", dup.Field),
			zap.Int("inserted", n),
			zap.Int("rows", len(res.Rows)))
		h.Errs.Write(w, r, "import users", apierr.Conflict(dup.Field, err))
		return
	}
	if validators.IsValidationFailure(err) {
		metrics.Observe(metrics.OpImport, nil)
		h.Log.Warn("import rejected by collection validator", zap.Int("inserted", n), zap.Error(err))
		h.Errs.Write(w, r, "import users", apierr.BadRequest("One or more rows failed document validation"))
		return
	}
	metrics.Observe(metrics.OpImport, err)
	if err != nil {
		h.Errs.Write(w, r, "import users", err)
		return
	}

	h.Log.Info("users imported", zap.Int("inserted", n))
	apierr.JSON(w, http.StatusCreated, importResponse{Inserted: n})
}

// csvSource picks the CSV stream out of r.
func csvSource(r *http.Request) (io.Reader, func(), error) {
	noop := func() {}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case mt == "multipart/form-data":
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, noop, errors.New("multipart upload must include a file field")
		}
		return f, func() { _ = f.Close() }, nil
	case mt == "text/csv", mt == "text/plain", mt == "application/csv", strings.HasSuffix(mt, "+csv"):
		return r.Body, noop, nil
	default:
		return nil, noop, errors.New("upload a CSV as multipart/form-data (file) or text/csv")
	}
}
