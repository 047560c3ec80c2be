package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spendview/catalog-backend/internal/domain"
	"github.com/spendview/catalog-backend/pkg/ctxutil"
)

// ErrorResponse is the JSON error envelope for all API errors.
type ErrorResponse struct {
	Error     string              `json:"error"`
	RequestID string              `json:"request_id,omitempty"`
	Fields    []FieldErrorPayload `json:"fields,omitempty"`
}

// FieldErrorPayload is one field-level validation failure.
type FieldErrorPayload struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondError maps domain errors onto HTTP status codes and writes the
// error envelope. Unknown errors are logged and hidden behind a generic 500.
func respondError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	resp := ErrorResponse{RequestID: ctxutil.RequestIDFromCtx(ctx)}

	var status int
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
		resp.Error = "validation failed"
		for _, fe := range vErr.Errors {
			resp.Fields = append(resp.Fields, FieldErrorPayload{Field: fe.Field, Message: fe.Message})
		}
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		resp.Error = "validation failed"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		resp.Error = "not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
		resp.Error = "already exists"
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		resp.Error = "conflict"
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		resp.Error = "catalog temporarily unavailable"
	case errors.Is(err, context.Canceled):
		// Client went away; 499 in nginx convention, but there is nobody
		// left to read the body anyway.
		status = 499
		resp.Error = "request canceled"
	default:
		status = http.StatusInternalServerError
		resp.Error = "internal server error"
		logger.ErrorContext(ctx, "unhandled error", "error", err)
	}

	writeJSON(w, status, resp)
}
