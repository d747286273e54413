package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// foreignKeyViolation is the SQLSTATE for a foreign key constraint failure.
const foreignKeyViolation = "23503"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// respondError maps service errors onto HTTP responses. Unknown errors become
// a generic 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var notFound *model.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: notFound.Error(),
			Code:  model.ErrCodeNotFound,
		})
		return
	}

	var insufficient *model.InsufficientStockError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: insufficient.Error(),
			Code:  model.ErrCodeInsufficientStock,
			Details: map[string]any{
				"productId":   insufficient.ProductID,
				"productName": insufficient.ProductName,
				"requested":   insufficient.Requested,
				"available":   insufficient.Available,
			},
		})
		return
	}

	var constraint *model.ConstraintViolationError
	if errors.As(err, &constraint) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: constraint.Message,
			Code:  model.ErrCodeConstraintViolation,
		})
		return
	}

	var domain *model.DomainError
	if errors.As(err, &domain) {
		status := http.StatusBadRequest
		if domain.Code == model.ErrCodeEmailRegistered {
			status = http.StatusConflict
		}
		writeJSON(w, status, ErrorResponse{Error: domain.Message, Code: domain.Code})
		return
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: "operation conflicts with existing references",
			Code:  model.ErrCodeConstraintViolation,
		})
		return
	}

	logger.Error().Err(err).Msg("unhandled service error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  model.ErrCodeInternalError,
	})
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}
