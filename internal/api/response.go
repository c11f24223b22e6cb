package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/kapu/ikusa-server/pkg/errors"
	"go.uber.org/zap"
)

// Envelope is the JSON shape of every response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, envelope Envelope, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func respondOK(w http.ResponseWriter, data any, logger *zap.Logger) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data}, logger)
}

func respondCreated(w http.ResponseWriter, data any, logger *zap.Logger) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Data: data}, logger)
}

func respondError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	writeJSON(w, status, Envelope{Success: false, Error: message}, logger)
}

// respondErr maps typed errors to their status code. 5xx errors are logged;
// their message is still surfaced so callers see why a scrape failed.
func respondErr(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	status := errors.StatusCode(err)

	envelope := Envelope{Success: false, Error: err.Error()}
	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) && validationErr.Field == "" {
		envelope.Details = make(map[string]string, len(validationErr.Context))
		for field, msg := range validationErr.Context {
			if s, ok := msg.(string); ok {
				envelope.Details[field] = s
			}
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}

	writeJSON(w, status, envelope, logger)
}
