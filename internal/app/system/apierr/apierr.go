// Package apierr maps errors from the members API onto JSON responses.
//
// Client-input problems become 400 with per-field messages, duplicate keys
// become 409 naming the field, missing records become 404 and throttled
// clients get 429. Anything else is a 500 that carries only a reference id;
// the full error is logged under that id.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/panelhub/internal/app/system/inputval"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind classifies an API error.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindConflict
	KindNotFound
	KindTooMany
)

// Error is an operational error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Fields  inputval.Errors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid reports rejected client input.
func Invalid(fields inputval.Errors) *Error {
	return &Error{Kind: KindInvalid, Message: "Validation failed", Fields: fields}
}

// BadRequest reports a single client-input problem that is not tied to a field.
func BadRequest(msg string) *Error {
	return &Error{Kind: KindInvalid, Message: msg}
}

// Conflict reports a duplicate value for field.
func Conflict(field string, err error) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("Duplicate value for %s. This %s is already in use.", field, field),
		Err:     err,
	}
}

// NotFound reports a missing resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// TooManyRequests reports a client that exceeded its request budget.
func TooManyRequests(msg string) *Error {
	return &Error{Kind: KindTooMany, Message: msg}
}

// body is the JSON envelope for every error response.
type body struct {
	Status    string          `json:"status"` // "fail" for 4xx, "error" for 5xx
	Message   string          `json:"message"`
	Errors    inputval.Errors `json:"errors,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// Writer renders errors for handlers.
type Writer struct {
	Log *zap.Logger
	// Expose includes internal error text in 500 responses. Off in production.
	Expose bool
}

// NewWriter constructs a Writer.
func NewWriter(logger *zap.Logger, expose bool) *Writer {
	return &Writer{Log: logger, Expose: expose}
}

// Write classifies err and writes the matching response.
// op names the failing operation in logs.
func (w *Writer) Write(rw http.ResponseWriter, r *http.Request, op string, err error) {
	var ae *Error
	if errors.As(err, &ae) {
		status := statusFor(ae.Kind)
		if status < 500 {
			w.Log.Warn(op+" rejected",
				zap.Int("status", status),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("reason", ae.Error()))
			JSON(rw, status, body{Status: "fail", Message: ae.Message, Errors: ae.Fields})
			return
		}
	}

	ref := uuid.NewString()
	w.Log.Error(op+" failed",
		zap.String("reference", ref),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))

	msg := "Something went wrong"
	if w.Expose && err != nil {
		msg = err.Error()
	}
	JSON(rw, http.StatusInternalServerError, body{Status: "error", Message: msg, Reference: ref})
}

func statusFor(k Kind) int {
	switch k {
	case KindInvalid:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindTooMany:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
