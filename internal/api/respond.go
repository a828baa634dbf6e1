// internal/api/respond.go
package api

import (
	"encoding/json"
	"net/http"

	apperrors "tender-matching/internal/common/errors"
)

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"requestId,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, stdErr *apperrors.StandardError) {
	writeJSON(w, status, errorBody{
		Error: errorDetail{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
			Details: stdErr.Details,
		},
		RequestID: RequestIDFrom(r.Context()),
	})
}

// writeFailure logs err in full and answers with a generic body.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, operation string, err error) {
	s.logger.Error("Request failed", map[string]interface{}{
		"requestId": RequestIDFrom(r.Context()),
		"operation": operation,
		"error":     err.Error(),
	})

	status := http.StatusInternalServerError
	code := apperrors.ErrCodeInternal
	message := "internal error"

	switch stdErr := apperrors.FromDataAccess(operation, err); stdErr.Code {
	case apperrors.ErrCodeElasticsearchConnectionFailed, apperrors.ErrCodeIndexNotFound:
		status, code, message = http.StatusServiceUnavailable, stdErr.Code, "search unavailable"
	case apperrors.ErrCodeQueryTimeout:
		status, code, message = http.StatusGatewayTimeout, stdErr.Code, "request timed out"
	}

	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: string(code), Message: message},
		RequestID: RequestIDFrom(r.Context()),
	})
}
