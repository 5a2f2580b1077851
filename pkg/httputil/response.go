package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
	"github.com/BothSann/kdmv-sub002/pkg/logger"
	"github.com/BothSann/kdmv-sub002/pkg/validator"
)

// Response is the envelope for all JSON responses.
type Response struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries a machine-readable code, a human message, and optional
// per-field validation details.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes data wrapped in the response envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(Response{Data: data}); err != nil {
		slog.Error("encode response", slog.String("error", err.Error()))
	}
}

// NoContent writes a bare 204 response, with no body and no content type.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error maps err to an HTTP status and writes the error envelope. Internal
// errors are logged with request context and returned as an opaque message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	body := &ErrorBody{
		Code:    codeForStatus(status),
		Message: err.Error(),
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Code = appErr.Code
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		status = http.StatusBadRequest
		body.Code = "VALIDATION_FAILED"
		body.Fields = valErr.Fields()
	}

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
		body.Message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Error: body}); err != nil {
		slog.Error("encode error response", slog.String("error", err.Error()))
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}
