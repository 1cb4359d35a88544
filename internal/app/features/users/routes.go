// internal/app/features/users/routes.go
package users

import (
	"net/http"

	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the member API under the path where the caller mounts it.
// Typically: r.Mount("/api/users", users.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/stats", h.ServeStats)
	r.Post("/bulk-add", h.HandleBulkAdd)
	if h.ImportLimiter != nil {
		r.With(h.ImportLimiter.Middleware(h.rejectImport)).Post("/import", h.HandleImport)
	} else {
		r.Post("/import", h.HandleImport)
	}
	r.Get("/{id}", h.ServeGet)
	r.Get("/{id}/engagement", h.ServeEngagement)

	return r
}

func (h *Handler) rejectImport(w http.ResponseWriter, r *http.Request) {
	h.Errs.Write(w, r, "import users", apierr.TooManyRequests("Too many imports. Please wait before trying again."))
}
