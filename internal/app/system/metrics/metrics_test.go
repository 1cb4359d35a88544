package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/panelhub/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/api/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := metrics.RequestTotal.WithLabelValues("GET", "/api/users/{id}", "404")
	before := testutil.ToFloat64(c)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users/"+id, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status: got %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(c) - before; got != 3 {
		t.Errorf("requests counted: got %v, want 3", got)
	}
}

func TestObserve(t *testing.T) {
	ok := metrics.OperationsTotal.WithLabelValues(metrics.OpAssign, "ok")
	failed := metrics.OperationsTotal.WithLabelValues(metrics.OpAssign, "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	metrics.Observe(metrics.OpAssign, nil)
	metrics.Observe(metrics.OpAssign, errors.New("boom"))
	metrics.Observe(metrics.OpAssign, nil)

	if got := testutil.ToFloat64(ok) - okBefore; got != 2 {
		t.Errorf("ok: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("error: got %v, want 1", got)
	}
}
