package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/panelhub/internal/app/system/apierr"
	"github.com/dalemusser/panelhub/internal/app/system/inputval"
	"go.uber.org/zap"
)

type response struct {
	Status    string              `json:"status"`
	Message   string              `json:"message"`
	Errors    map[string][]string `json:"errors"`
	Reference string              `json:"reference"`
}

func write(t *testing.T, w *apierr.Writer, err error) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/users", nil)
	w.Write(rec, req, "list users", err)

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, resp
}

func TestWrite_Invalid(t *testing.T) {
	fields := inputval.Errors{}
	fields.Add("limit", "limit must not be greater than 100")

	rec, resp := write(t, apierr.NewWriter(zap.NewNop(), false), apierr.Invalid(fields))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	if resp.Status != "fail" || resp.Message != "Validation failed" {
		t.Errorf("unexpected body: %+v", resp)
	}
	if len(resp.Errors["limit"]) != 1 {
		t.Errorf("expected limit error, got %v", resp.Errors)
	}
}

func TestWrite_ConflictWrapped(t *testing.T) {
	err := fmt.Errorf("import members: %w", apierr.Conflict("email", errors.New("E11000")))
	rec, resp := write(t, apierr.NewWriter(zap.NewNop(), false), err)

	if rec.Code != http.StatusConflict {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusConflict)
	}
	want := "Duplicate value for email. This email is already in use."
	if resp.Message != want {
		t.Errorf("message: got %q, want %q", resp.Message, want)
	}
}

func TestWrite_NotFound(t *testing.T) {
	rec, resp := write(t, apierr.NewWriter(zap.NewNop(), false), apierr.NotFound("User not found"))
	if rec.Code != http.StatusNotFound || resp.Status != "fail" {
		t.Errorf("got %d %+v", rec.Code, resp)
	}
}

func TestWrite_InternalHidesDetail(t *testing.T) {
	rec, resp := write(t, apierr.NewWriter(zap.NewNop(), false), errors.New("connection refused to 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if resp.Status != "error" || resp.Message != "Something went wrong" {
		t.Errorf("unexpected body: %+v", resp)
	}
	if resp.Reference == "" {
		t.Error("expected a reference id")
	}
}

func TestWrite_InternalExposedOutsideProduction(t *testing.T) {
	_, resp := write(t, apierr.NewWriter(zap.NewNop(), true), errors.New("boom"))
	if resp.Message != "boom" {
		t.Errorf("message: got %q, want %q", resp.Message, "boom")
	}
}

func TestWrite_TooManyRequests(t *testing.T) {
	rec, resp := write(t, apierr.NewWriter(zap.NewNop(), false), apierr.TooManyRequests("slow down"))
	if rec.Code != http.StatusTooManyRequests || resp.Status != "fail" || resp.Message != "slow down" {
		t.Errorf("got %d %+v", rec.Code, resp)
	}
}
